package persistence

import (
	"net/url"
	"testing"

	"shorts-player/infrastructure/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSSQLDSN(t *testing.T) {
	tests := []struct {
		name      string
		cfg       configuration.Db
		wantTrust bool
		wantUser  string
	}{
		{
			name:      "local container trusts certificate",
			cfg:       configuration.Db{Name: "shorts", Host: "localhost", Port: "1433", User: "sa", Password: "p@ss"},
			wantTrust: true,
			wantUser:  "sa",
		},
		{
			name:     "remote host keeps verification",
			cfg:      configuration.Db{Name: "shorts", Host: "db.example.net", Port: "1433", User: "app"},
			wantUser: "app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(mssqlDSN(tt.cfg))
			require.NoError(t, err)
			assert.Equal(t, "sqlserver", u.Scheme)
			assert.Equal(t, tt.cfg.Host+":"+tt.cfg.Port, u.Host)
			assert.Equal(t, tt.wantUser, u.User.Username())
			assert.Equal(t, "shorts", u.Query().Get("database"))
			assert.Equal(t, "true", u.Query().Get("encrypt"))
			if tt.wantTrust {
				assert.Equal(t, "true", u.Query().Get("TrustServerCertificate"))
			} else {
				assert.Empty(t, u.Query().Get("TrustServerCertificate"))
			}
		})
	}
}
