package punch

import (
	"errors"
	"strings"

	puncherrors "go-derma/internal/punch/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const activePunchIndex = "uq_punches_one_active"

// isActivePunchViolation reports a concurrent punch-in that lost against the
// one-open-punch-per-user index.
func isActivePunchViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == activePunchIndex
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), activePunchIndex)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return puncherrors.ErrPunchNotFound
	}
	if isActivePunchViolation(err) {
		return puncherrors.ErrAlreadyPunchedIn
	}
	return err
}
