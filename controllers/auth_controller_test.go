package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/wakeup/utils"
)

func TestLogin_IssuesTokenForValidSecret(t *testing.T) {
	ctl := NewAuthController()

	w := invoke(ctl.Login, http.MethodPost,
		`{"user_id":"u1","display_name":"alice","secret":"`+testGatewaySecret+`"}`, "", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.DisplayName)
}

func TestLogin_RejectsBadSecret(t *testing.T) {
	ctl := NewAuthController()

	w := invoke(ctl.Login, http.MethodPost,
		`{"user_id":"u1","display_name":"alice","secret":"wrong"}`, "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_SanitizesDisplayName(t *testing.T) {
	ctl := NewAuthController()

	w := invoke(ctl.Login, http.MethodPost,
		`{"user_id":"u1","display_name":"<script>x</script>bob","secret":"`+testGatewaySecret+`"}`, "", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	claims, err := utils.ParseToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.DisplayName)
}

func TestLogin_MissingFields(t *testing.T) {
	ctl := NewAuthController()

	w := invoke(ctl.Login, http.MethodPost, `{"user_id":"u1"}`, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
