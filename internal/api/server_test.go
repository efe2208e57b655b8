package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/response"
	"github.com/laconfrerie/confrerie-api/internal/api/middleware"
	"github.com/laconfrerie/confrerie-api/internal/config"
	"github.com/laconfrerie/confrerie-api/internal/repository/dao"
	"github.com/laconfrerie/confrerie-api/internal/session"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type pageBody struct {
	CSRF            string         `json:"csrf"`
	Page            string         `json:"page"`
	IsLoggedIn      bool           `json:"isLoggedIn"`
	IsAdmin         bool           `json:"isAdmin"`
	Flash           *session.Flash `json:"flash"`
	RandomChallenge string         `json:"randomChallenge"`
	CurrentUser     *struct {
		ID     string `json:"id"`
		Points int    `json:"points"`
	} `json:"currentUser"`
	Parties []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"parties"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	conf, err := config.Load(filepath.Join(dir, "config.yml"))
	require.NoError(t, err)
	conf.Gin.Mode = gin.TestMode
	conf.Storage.UploadDir = filepath.Join(dir, "uploads")

	s, err := NewServer(conf, dao.NewFileDAO(filepath.Join(dir, "app_data.json")))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

// client keeps the cookies of one browser across requests.
type client struct {
	t       *testing.T
	srv     *Server
	cookies map[string]*http.Cookie
	csrf    string
}

func newClient(t *testing.T, srv *Server) *client {
	return &client{t: t, srv: srv, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()

	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.srv.Router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}

	return rec
}

func (c *client) page(query string) pageBody {
	c.t.Helper()

	rec := c.do(httptest.NewRequest(http.MethodGet, "/"+query, nil))
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	var body pageBody
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &body))
	c.csrf = body.CSRF

	return body
}

func (c *client) post(form url.Values, ajax bool) *httptest.ResponseRecorder {
	c.t.Helper()

	if form.Get("csrf") == "" {
		form.Set("csrf", c.csrf)
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}

	return c.do(req)
}

func (c *client) ajax(form url.Values) response.Envelope {
	c.t.Helper()

	rec := c.post(form, true)

	var env response.Envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func (c *client) login(userID, password string) {
	c.t.Helper()

	c.page("")
	env := c.ajax(url.Values{"action": {"login"}, "user_id": {userID}, "password": {password}})
	require.True(c.t, env.OK, env.Message)
}

func TestServer_Healthcheck(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_CSRF(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s)
	c.page("")

	rec := c.post(url.Values{"action": {"logout"}, "csrf": {"forged"}}, false)
	assert.Equal(t, response.StatusSessionExpired, rec.Code)
	assert.Equal(t, "Session expirée, recharge la page.", rec.Body.String())

	rec = c.post(url.Values{"action": {"logout"}, "csrf": {"forged"}}, true)
	assert.Equal(t, response.StatusSessionExpired, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)

	// A fresh client has no session to match against.
	other := newClient(t, s)
	rec = other.post(url.Values{"action": {"logout"}, "csrf": {c.csrf}}, false)
	assert.Equal(t, response.StatusSessionExpired, rec.Code)
}

func TestServer_LoginAndRemember(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s)

	body := c.page("")
	assert.False(t, body.IsLoggedIn)
	assert.NotEmpty(t, body.CSRF)

	rec := c.post(url.Values{"action": {"login"}, "user_id": {"u1"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?page=dashboard", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, middleware.RememberCookie)

	body = c.page("?page=dashboard")
	assert.True(t, body.IsLoggedIn)
	require.NotNil(t, body.CurrentUser)
	assert.Equal(t, "u1", body.CurrentUser.ID)
	require.NotNil(t, body.Flash)
	assert.Equal(t, session.FlashInfo, body.Flash.Type)
	assert.Equal(t, "Premiere connexion: pense a definir ton mot de passe dans Parametres.", body.Flash.Message)
	assert.NotEmpty(t, body.RandomChallenge)

	// The flash is shown once.
	assert.Nil(t, c.page("").Flash)

	// A new browser session with only the remember cookie is logged back in.
	restored := newClient(t, s)
	restored.cookies[middleware.RememberCookie] = c.cookies[middleware.RememberCookie]
	assert.True(t, restored.page("").IsLoggedIn)

	// A forged remember cookie is dropped.
	forged := newClient(t, s)
	forged.cookies[middleware.RememberCookie] = &http.Cookie{Name: middleware.RememberCookie, Value: "not-a-token"}
	assert.False(t, forged.page("").IsLoggedIn)
	assert.NotContains(t, forged.cookies, middleware.RememberCookie)

	env := c.ajax(url.Values{"action": {"logout"}})
	assert.True(t, env.OK)
	assert.Equal(t, "Deconnexion ok.", env.Message)
	assert.False(t, c.page("").IsLoggedIn)
	assert.NotContains(t, c.cookies, middleware.RememberCookie)
}

func TestServer_LoginFailures(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s)
	c.page("")

	env := c.ajax(url.Values{"action": {"login"}, "user_id": {"nobody"}})
	assert.False(t, env.OK)
	assert.Equal(t, "Compte introuvable.", env.Message)

	env = c.ajax(url.Values{"action": {"login"}, "user_id": {"admin"}, "password": {"wrong"}})
	assert.False(t, env.OK)
	assert.Equal(t, "Mot de passe incorrect.", env.Message)

	rec := c.post(url.Values{"action": {"login"}, "user_id": {"admin"}, "password": {"wrong"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	body := c.page("")
	require.NotNil(t, body.Flash)
	assert.Equal(t, session.FlashError, body.Flash.Type)
	assert.Equal(t, "Mot de passe incorrect.", body.Flash.Message)
}

func TestServer_UnknownActionRedirects(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s)
	c.page("")

	rec := c.post(url.Values{"action": {"dance"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?page=dashboard", rec.Header().Get("Location"))

	body := c.page("")
	require.NotNil(t, body.Flash)
	assert.Equal(t, "Action inconnue.", body.Flash.Message)
}

func TestServer_RequiresLogin(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s)
	c.page("")

	rec := c.post(url.Values{"action": {"create_party"}, "name": {"Gala"}, "location_name": {"Lyon"}}, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Connexion requise.")
}

func TestServer_PartyAndPostFlow(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s)
	c.login("u1", "")

	rec := c.post(url.Values{"action": {"create_party"}, "name": {""}, "location_name": {"Lyon"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?page=parties", rec.Header().Get("Location"))
	body := c.page("?page=parties")
	require.NotNil(t, body.Flash)
	assert.Equal(t, "Nom et lieu obligatoires.", body.Flash.Message)

	env := c.ajax(url.Values{"action": {"create_party"}, "name": {"Gala"}, "location_name": {"Lyon"}, "date": {"2026-10-18"}})
	require.True(t, env.OK, env.Message)
	assert.Equal(t, "Soiree ajoutee.", env.Message)

	body = c.page("?page=parties")
	require.NotEmpty(t, body.Parties)
	partyID := body.Parties[0].ID
	assert.Equal(t, "Gala", body.Parties[0].Name)

	// Multipart post with one image.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("action", "create_post"))
	require.NoError(t, w.WriteField("csrf", c.csrf))
	require.NoError(t, w.WriteField("party_id", partyID))
	require.NoError(t, w.WriteField("description", "Soiree mythique avec toute la bande"))
	fw, err := w.CreateFormFile("post_media_files", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/actions", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec = c.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
		Data    struct {
			Post struct {
				ID            string `json:"id"`
				ImageURL      string `json:"imageUrl"`
				PointsAwarded int    `json:"pointsAwarded"`
			} `json:"post"`
			OwnerPoints int `json:"ownerPoints"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.OK)
	assert.True(t, strings.HasPrefix(created.Message, "Post cree. +"), created.Message)
	assert.True(t, strings.HasPrefix(created.Data.Post.ImageURL, "uploads/"), created.Data.Post.ImageURL)
	assert.Equal(t, created.Data.Post.PointsAwarded, created.Data.OwnerPoints)

	rec = c.do(httptest.NewRequest(http.MethodGet, "/"+created.Data.Post.ImageURL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Liking one's own post is refused, softly for browsers.
	env = c.ajax(url.Values{"action": {"toggle_like"}, "post_id": {created.Data.Post.ID}})
	assert.False(t, env.OK)
	assert.Equal(t, "Tu ne peux pas liker ton propre post.", env.Message)

	rec = c.post(url.Values{"action": {"toggle_like"}, "post_id": {created.Data.Post.ID}, "redirect_page": {"rankings"}}, false)
	assert.Equal(t, "/?page=rankings", rec.Header().Get("Location"))
	body = c.page("?page=rankings")
	require.NotNil(t, body.Flash)
	assert.Equal(t, session.FlashInfo, body.Flash.Type)

	liker := newClient(t, s)
	liker.login("u2", "")
	env = liker.ajax(url.Values{"action": {"toggle_like"}, "post_id": {created.Data.Post.ID}})
	require.True(t, env.OK, env.Message)
	assert.Equal(t, "Like mis a jour.", env.Message)

	env = c.ajax(url.Values{"action": {"delete_post"}, "post_id": {created.Data.Post.ID}})
	require.True(t, env.OK, env.Message)
	assert.Equal(t, "Post supprime.", env.Message)
	assert.Equal(t, 0, c.page("").CurrentUser.Points)
}

func TestServer_AdminBackup(t *testing.T) {
	s := newTestServer(t)

	member := newClient(t, s)
	member.login("u1", "")
	rec := member.do(httptest.NewRequest(http.MethodGet, "/?download=backup", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := newClient(t, s)
	admin.login("admin", "admin")
	assert.True(t, admin.page("?page=admin").IsAdmin)

	rec = admin.do(httptest.NewRequest(http.MethodGet, "/?download=backup", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `attachment; filename="confrerie_backup_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}\.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), `"users"`)
	backup := rec.Body.Bytes()

	env := admin.ajax(url.Values{"action": {"admin_toggle_map"}, "is_map_enabled": {"0"}})
	require.True(t, env.OK, env.Message)
	assert.Equal(t, map[string]any{"isMapEnabled": false}, env.Data)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("action", "admin_import_backup"))
	require.NoError(t, w.WriteField("csrf", admin.csrf))
	fw, err := w.CreateFormFile("backup_file", "backup.json")
	require.NoError(t, err)
	_, err = fw.Write(backup)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec = admin.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?page=admin", rec.Header().Get("Location"))

	body := admin.page("?page=admin")
	require.NotNil(t, body.Flash)
	assert.Equal(t, "Backup restaure.", body.Flash.Message)

	env = admin.ajax(url.Values{"action": {"admin_import_backup"}})
	assert.False(t, env.OK)
	assert.Equal(t, "Fichier backup manquant.", env.Message)
}

func TestServer_DeletedUserIsLoggedOut(t *testing.T) {
	s := newTestServer(t)

	member := newClient(t, s)
	member.login("u3", "")

	admin := newClient(t, s)
	admin.login("admin", "admin")
	env := admin.ajax(url.Values{"action": {"admin_delete_user"}, "target_user_id": {"u3"}})
	require.True(t, env.OK, env.Message)
	assert.Equal(t, "Compte supprime.", env.Message)

	assert.False(t, member.page("").IsLoggedIn)
	assert.NotContains(t, member.cookies, middleware.RememberCookie)
}
