package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"social_profile_server/pkg/errorx"
)

func TestWrapDBError(t *testing.T) {
	if got := errorx.GetCode(wrapDBError(gorm.ErrRecordNotFound, "q")); got != errorx.CodeNotFound {
		t.Fatalf("record not found mapped to %d", got)
	}
	if got := errorx.GetCode(wrapDBErrorf(errors.New("conn refused"), "q %d", 1)); got != errorx.CodeDBError {
		t.Fatalf("driver error mapped to %d", got)
	}
	if wrapDBError(nil, "q") != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestIsTxConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate", wrapDBError(gorm.ErrDuplicatedKey, "insert"), true},
		{"deadlock", wrapDBError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, "update"), true},
		{"lock wait", &mysql.MySQLError{Number: 1205}, true},
		{"syntax", &mysql.MySQLError{Number: 1064}, false},
		{"not found", wrapDBError(gorm.ErrRecordNotFound, "q"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTxConflict(tc.err); got != tc.want {
				t.Fatalf("IsTxConflict = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	if clampLimit(0, 100) != 1 || clampLimit(500, 100) != 100 || clampLimit(20, 100) != 20 {
		t.Fatalf("clampLimit bounds broken")
	}
}
