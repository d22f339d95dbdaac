package domain

// MigrationResult represents the result of a migration execution for one slot
type MigrationResult struct {
	Slot    int
	Success bool
	Output  string
	Error   error
}
