package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthCodeURL_CarriesState(t *testing.T) {
	p := NewGoogleProvider(config.GoogleOAuthConfig{ClientID: "cid", ClientSecret: "sec", RedirectURL: "http://localhost/cb"})
	raw := p.AuthCodeURL("xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "cid", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost/cb", u.Query().Get("redirect_uri"))
}

func TestExchange_LoadsProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(GoogleProfile{ID: "g-1", Email: "asha@example.com", VerifiedEmail: true, Name: "Asha"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &googleProvider{
		cfg: &oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "sec",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		userInfoURL: srv.URL + "/userinfo",
	}

	profile, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", profile.ID)
	assert.Equal(t, "asha@example.com", profile.Email)
}
