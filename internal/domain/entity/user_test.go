package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleAuthority(t *testing.T) {
	assert.Equal(t, "ROLE_USER", RoleUser.Authority())
	assert.Equal(t, "ROLE_ADMIN", RoleAdmin.Authority())
}

func TestDateJSON(t *testing.T) {
	d := NewDate(1994, time.June, 3)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1994-06-03"`, string(b))

	var got Date
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, got.Equal(d.Time))
}

func TestDateJSONRejectsBadInput(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"03/06/1994"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`19940603`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1994, time.June, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1994-06-03", d.String())

	require.NoError(t, d.Scan("2001-12-31"))
	assert.Equal(t, "2001-12-31", d.String())

	assert.Error(t, d.Scan(42))
}
