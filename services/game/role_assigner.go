package game

import (
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"
)

// RoleAssigner draws unbiased role assignments and maintains the commit-reveal
// state: the public commitment hash is handed out at game start, while role
// and salt stay server-side until an authorized reveal (elimination or game
// end).
type RoleAssigner struct {
	mu    sync.Mutex
	games map[string]map[string]roleSecret
}

type roleSecret struct {
	role       Role
	salt       []byte
	commitment string
}

func NewRoleAssigner() *RoleAssigner {
	return &RoleAssigner{games: map[string]map[string]roleSecret{}}
}

// AssignRoles shuffles the roster with a crypto-random Fisher-Yates and labels
// the first impostorCount entries saboteurs. The input slice is not modified.
func (ra *RoleAssigner) AssignRoles(players []string, impostorCount int) (map[string]Role, error) {
	if impostorCount <= 0 {
		return nil, fmt.Errorf("impostor count must be positive, got %d", impostorCount)
	}
	if impostorCount >= len(players) {
		return nil, fmt.Errorf("impostor count %d must be below player count %d", impostorCount, len(players))
	}

	shuffled := make([]string, len(players))
	copy(shuffled, players)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	assignments := make(map[string]Role, len(players))
	for i, address := range shuffled {
		if i < impostorCount {
			assignments[address] = RoleSaboteur
		} else {
			assignments[address] = RoleChef
		}
	}
	return assignments, nil
}

// GenerateCommitments draws a fresh salt per player and stores role+salt
// privately, returning only the public commitment hashes. Commitments fix the
// assignment before play so fairness can be proven after the fact.
func (ra *RoleAssigner) GenerateCommitments(gameID string, assignments map[string]Role) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no assignments to commit for game %s", gameID)
	}

	ra.mu.Lock()
	defer ra.mu.Unlock()

	secrets := make(map[string]roleSecret, len(assignments))
	commitments := make(map[string]string, len(assignments))
	for address, role := range assignments {
		salt := randBytes(saltSize)
		commitment := ComputeCommitment(gameID, address, role, salt)
		secrets[address] = roleSecret{role: role, salt: salt, commitment: commitment}
		commitments[address] = commitment
	}
	ra.games[gameID] = secrets
	return commitments, nil
}

// GetSalt reveals the stored salt, hex-encoded. Intended only for elimination
// or game-end reveals.
func (ra *RoleAssigner) GetSalt(gameID, address string) (string, bool) {
	ra.mu.Lock()
	defer ra.mu.Unlock()

	secret, ok := ra.games[gameID][address]
	if !ok {
		return "", false
	}
	return hex.EncodeToString(secret.salt), true
}

// GetStoredRole reveals the committed role.
func (ra *RoleAssigner) GetStoredRole(gameID, address string) (Role, bool) {
	ra.mu.Lock()
	defer ra.mu.Unlock()

	secret, ok := ra.games[gameID][address]
	if !ok {
		return "", false
	}
	return secret.role, true
}

// GetCommitment returns the public commitment hash.
func (ra *RoleAssigner) GetCommitment(gameID, address string) (string, bool) {
	ra.mu.Lock()
	defer ra.mu.Unlock()

	secret, ok := ra.games[gameID][address]
	if !ok {
		return "", false
	}
	return secret.commitment, true
}

// CleanupGame purges the private role/salt state. Idempotent. Called at
// registry-level removal, not at game end, since reveals may still be pending.
func (ra *RoleAssigner) CleanupGame(gameID string) {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	delete(ra.games, gameID)
}

const saltSize = 32

// ComputeCommitment hashes (gameID, address, role, salt) with SHA3-256 and
// returns the hex digest. Field separators keep the encoding unambiguous.
func ComputeCommitment(gameID, address string, role Role, salt []byte) string {
	h := sha3.New256()
	h.Write([]byte(gameID))
	h.Write([]byte{0})
	h.Write([]byte(address))
	h.Write([]byte{0})
	h.Write([]byte(role))
	h.Write([]byte{0})
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyCommitment re-hashes a revealed (address, role, salt) tuple and checks
// it against the published commitment.
func VerifyCommitment(gameID, address string, role Role, saltHex, commitment string) bool {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	return ComputeCommitment(gameID, address, role, salt) == commitment
}
