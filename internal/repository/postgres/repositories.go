package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users       *UserRepository
	Tokens      *TokenRepository
	Sessions    *SessionRepository
	Profiles    *ProfileRepository
	Bookings    *BookingRepository
	Discussions *DiscussionRepository
	Gatherings  *GatheringRepository
	Messages    *MessageRepository
	Vault       *VaultRepository
	Directory   *DirectoryRepository
	Teams       *TeamRepository
	Procedures  *ProcedureCaller
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(pool),
		Tokens:      NewTokenRepository(pool),
		Sessions:    NewSessionRepository(pool),
		Profiles:    NewProfileRepository(pool),
		Bookings:    NewBookingRepository(pool),
		Discussions: NewDiscussionRepository(pool),
		Gatherings:  NewGatheringRepository(pool),
		Messages:    NewMessageRepository(pool),
		Vault:       NewVaultRepository(pool),
		Directory:   NewDirectoryRepository(pool),
		Teams:       NewTeamRepository(pool),
		Procedures:  NewProcedureCaller(pool),
	}
}
