package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"partnerledger/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// classify maps a pgx error onto the service sentinel it represents, or nil when it is none of them
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return service.ErrStorageUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23":
			return service.ErrConstraintViolation
		case pgErr.Code == "22003":
			// numeric_value_out_of_range
			return service.ErrBalanceOutOfRange
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			return service.ErrStorageUnavailable
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			// admin_shutdown, crash_shutdown, cannot_connect_now
			return service.ErrStorageUnavailable
		}
		return nil
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return service.ErrStorageUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return service.ErrStorageUnavailable
	}

	return nil
}

// wrapError wraps err with a message and, when recognised, the matching service sentinel
func wrapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if sentinel := classify(err); sentinel != nil {
		return fmt.Errorf("%s: %w: %w", msg, sentinel, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
