package config

import (
	"fmt"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
)

func embedded(v string) commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: "embedded", Value: v}
}

func missingFile() commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/file"}}
}

func TestMakeConnStr(t *testing.T) {
	valid := Database{
		Host:     embedded("my_host"),
		User:     embedded("my_user"),
		Password: embedded("my_password"),
		Name:     "profile_session",
		Port:     "5432",
	}

	tests := []struct {
		name        string
		mutate      func(*Database)
		wantConnStr string
		assertErr   assert.ErrorAssertionFunc
	}{
		{
			name:        "Make connection string",
			mutate:      func(*Database) {},
			wantConnStr: "host=my_host user=my_user password=my_password dbname=profile_session port=5432",
			assertErr:   assert.NoError,
		},
		{
			name:        "With sslmode",
			mutate:      func(d *Database) { d.SSLMode = "disable" },
			wantConnStr: "host=my_host user=my_user password=my_password dbname=profile_session port=5432 sslmode=disable",
			assertErr:   assert.NoError,
		},
		{
			name:      "Error - invalid host source",
			mutate:    func(d *Database) { d.Host = commoncfg.SourceRef{Source: "invalid-source", Value: "my_host"} },
			assertErr: assert.Error,
		},
		{
			name:      "Error - missing user file",
			mutate:    func(d *Database) { d.User = missingFile() },
			assertErr: assert.Error,
		},
		{
			name:      "Error - missing password file",
			mutate:    func(d *Database) { d.Password = missingFile() },
			assertErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := valid
			tt.mutate(&conf)

			connStr, err := MakeConnStr(conf)
			if !tt.assertErr(t, err, fmt.Sprintf("MakeConnStr() error = %v", err)) || err != nil {
				return
			}

			assert.Equal(t, tt.wantConnStr, connStr, "MakeConnStr() = %v", connStr)
		})
	}
}
