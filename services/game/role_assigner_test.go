package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterOf(n int) []string {
	players := make([]string, n)
	letters := "abcdefghij"
	for i := range players {
		players[i] = "0x" + string(letters[i])
	}
	return players
}

func TestAssignRolesCounts(t *testing.T) {
	ra := NewRoleAssigner()

	for _, tc := range []struct {
		players   int
		saboteurs int
	}{
		{5, 1}, {6, 1}, {7, 2}, {9, 2}, {10, 3},
	} {
		assignments, err := ra.AssignRoles(rosterOf(tc.players), tc.saboteurs)
		require.NoError(t, err)
		assert.Len(t, assignments, tc.players)

		saboteurs := 0
		for _, role := range assignments {
			if role == RoleSaboteur {
				saboteurs++
			}
		}
		assert.Equal(t, tc.saboteurs, saboteurs, "%d players", tc.players)
	}
}

func TestAssignRolesRejectsDegenerateCounts(t *testing.T) {
	ra := NewRoleAssigner()

	_, err := ra.AssignRoles(rosterOf(5), 0)
	assert.Error(t, err)

	_, err = ra.AssignRoles(rosterOf(5), 5)
	assert.Error(t, err)

	_, err = ra.AssignRoles(rosterOf(5), 6)
	assert.Error(t, err)
}

func TestAssignRolesDoesNotMutateInput(t *testing.T) {
	ra := NewRoleAssigner()
	players := rosterOf(5)
	original := make([]string, len(players))
	copy(original, players)

	_, err := ra.AssignRoles(players, 1)
	require.NoError(t, err)
	assert.Equal(t, original, players)
}

func TestCommitRevealRoundTrip(t *testing.T) {
	ra := NewRoleAssigner()
	assignments, err := ra.AssignRoles(rosterOf(5), 1)
	require.NoError(t, err)

	commitments, err := ra.GenerateCommitments("g1", assignments)
	require.NoError(t, err)
	require.Len(t, commitments, 5)

	for address, role := range assignments {
		salt, ok := ra.GetSalt("g1", address)
		require.True(t, ok)

		assert.True(t, VerifyCommitment("g1", address, role, salt, commitments[address]))

		// Wrong role fails verification.
		other := RoleChef
		if role == RoleChef {
			other = RoleSaboteur
		}
		assert.False(t, VerifyCommitment("g1", address, other, salt, commitments[address]))

		// Wrong game id fails verification.
		assert.False(t, VerifyCommitment("g2", address, role, salt, commitments[address]))
	}
}

func TestCommitmentsAreUniquePerPlayer(t *testing.T) {
	ra := NewRoleAssigner()
	assignments, err := ra.AssignRoles(rosterOf(5), 1)
	require.NoError(t, err)

	commitments, err := ra.GenerateCommitments("g1", assignments)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, c := range commitments {
		assert.False(t, seen[c], "commitment reused")
		seen[c] = true
	}
}

func TestCleanupGameForgetsSecrets(t *testing.T) {
	ra := NewRoleAssigner()
	assignments, err := ra.AssignRoles(rosterOf(5), 1)
	require.NoError(t, err)
	_, err = ra.GenerateCommitments("g1", assignments)
	require.NoError(t, err)

	ra.CleanupGame("g1")
	_, ok := ra.GetSalt("g1", "0xa")
	assert.False(t, ok)

	// Second cleanup is a no-op.
	ra.CleanupGame("g1")
}
