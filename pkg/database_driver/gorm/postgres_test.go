package gorm

import (
	"strings"
	"testing"
)

// TestDSN tests connection string building
func TestDSN(t *testing.T) {
	dsn := DSN("db", "5432", "bridge", "pw", "audit", false)
	if !strings.Contains(dsn, "sslmode=disable") || !strings.Contains(dsn, "dbname=audit") {
		t.Errorf("unexpected dsn %s", dsn)
	}
	if dsn := DSN("db", "5432", "bridge", "pw", "audit", true); !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("expected sslmode=require, got %s", dsn)
	}
}

// TestConnectRequiresTarget tests the empty target guard
func TestConnectRequiresTarget(t *testing.T) {
	if _, err := ConnectToPostgreSQL("", "", "", "", "", false); err == nil {
		t.Error("expected error without host, port and database")
	}
}
