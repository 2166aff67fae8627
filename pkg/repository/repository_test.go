package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/caloric/pkg/repository"
)

var errMissing = errors.New("table missing")

func TestMapError(t *testing.T) {
	other := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, errMissing},
		{"wrapped undefined table", fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"}), errMissing},
		{"other pg error", &pgconn.PgError{Code: "23505"}, nil},
		{"non pg error", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errMissing)
			switch {
			case tt.want == nil && tt.err == nil:
				if got != nil {
					t.Errorf("got %v, want nil", got)
				}
			case tt.want == nil:
				if got != tt.err {
					t.Errorf("got %v, want unchanged %v", got, tt.err)
				}
			default:
				if !errors.Is(got, tt.want) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
