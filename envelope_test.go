package session_test

import (
	"errors"
	"testing"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUserShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"bare record", `{"id":"u1","name":"Ana"}`},
		{"user wrapper", `{"user":{"id":"u1","name":"Ana"}}`},
		{"data wrapper", `{"data":{"id":"u1","name":"Ana"}}`},
		{"data.user wrapper", `{"data":{"user":{"id":"u1","name":"Ana"}}}`},
		{"data.data wrapper", `{"data":{"data":{"id":"u1","name":"Ana"}}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := session.DecodeUser([]byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, "u1", user.ID)
			assert.Equal(t, "Ana", user.Name)
		})
	}
}

func TestDecodeUserFirstIdentityWins(t *testing.T) {
	// the top-level record carries an id, so nested shapes are never
	// consulted
	payload := `{"id":"outer","user":{"id":"inner"}}`

	user, err := session.DecodeUser([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "outer", user.ID)
}

func TestDecodeUserSkipsIdentitylessWrapper(t *testing.T) {
	// {user} exists but has no id; the chain keeps walking to {data}
	payload := `{"user":{"name":"nobody"},"data":{"id":"u2"}}`

	user, err := session.DecodeUser([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
}

func TestDecodeUserNoIdentity(t *testing.T) {
	_, err := session.DecodeUser([]byte(`{"data":{"count":3}}`))
	assert.True(t, errors.Is(err, session.ErrNoIdentity))
}

func TestDecodeUserInvalidJSON(t *testing.T) {
	_, err := session.DecodeUser([]byte(`{broken`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrNoIdentity))
}

func TestDecodeUserMongoStyleID(t *testing.T) {
	user, err := session.DecodeUser([]byte(`{"_id":"65af","name":"Ana"}`))
	require.NoError(t, err)
	assert.Equal(t, "65af", user.ID)
}

func TestDecodeUserNumericID(t *testing.T) {
	user, err := session.DecodeUser([]byte(`{"id":42}`))
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
}

func TestDecodeUserKnownFields(t *testing.T) {
	payload := `{
		"id": "u1",
		"role": "CAJERO",
		"name": "Ana",
		"email": "ana@example.com",
		"phone_number": "0981123456",
		"isBypassUser": true
	}`

	user, err := session.DecodeUser([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, session.RoleCashier, user.Role)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "0981123456", user.Phone)
	assert.True(t, user.Bypass)
}

func TestDecodeUserUnknownFieldsLandInMetadata(t *testing.T) {
	payload := `{"id":"u1","branch":"central","limit":1500}`

	user, err := session.DecodeUser([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "central", user.Metadata["branch"])
	assert.Equal(t, float64(1500), user.Metadata["limit"])
}

func TestUnwrapUser(t *testing.T) {
	doc := map[string]any{
		"data": map[string]any{"user": map[string]any{"id": "u9"}},
	}

	candidate, ok := session.UnwrapUser(doc)
	require.True(t, ok)
	assert.Equal(t, "u9", candidate["id"])

	_, ok = session.UnwrapUser(map[string]any{"noise": true})
	assert.False(t, ok)
}

func TestUserClone(t *testing.T) {
	orig := &session.User{ID: "u1", Metadata: map[string]any{"k": "v"}}

	clone := orig.Clone()
	clone.Metadata["k"] = "changed"

	assert.Equal(t, "v", orig.Metadata["k"])

	var nilUser *session.User
	assert.Nil(t, nilUser.Clone())
}

func TestNormalizePhone(t *testing.T) {
	user := &session.User{Phone: "0981123456"}
	user.NormalizePhone()
	assert.Equal(t, "+595981123456", user.Phone)

	// garbage is left as-is
	user = &session.User{Phone: "not-a-phone"}
	user.NormalizePhone()
	assert.Equal(t, "not-a-phone", user.Phone)

	user = &session.User{}
	user.NormalizePhone()
	assert.Empty(t, user.Phone)
}
