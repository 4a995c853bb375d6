package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"moneytransfer/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browser drives the server like a cookie-keeping client: it carries the session
// and flash cookies across requests the way a real browser would.
type browser struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
	return &browser{t: t, r: r, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.r.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
		} else {
			b.cookies[c.Name] = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, form)
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	setupTestDB(t)
	r := gin.New()
	r.LoadHTMLGlob("templates/*.html")
	setupRoutes(r)
	return r
}

func idStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestBrowserFlow(t *testing.T) {
	r := setupTestServer(t)
	b := newBrowser(t, r)

	// anonymous visitors land on the login page
	rec := b.get("/")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// register, then sign in
	rec = b.post("/register", url.Values{"username": {"alice"}, "password": {"secret123"}, "email": {"a@example.com"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = b.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	rec = b.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.NotNil(t, b.cookies[sessionCookie], "login must set the session cookie")

	rec = b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	var user models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)

	// registration seeds the starter statuses
	statuses, err := listStatuses(user.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	business, personal := statuses[0], statuses[1]

	// build the reference data through the forms
	rec = b.post("/reference/add", url.Values{"action": {"add_type"}, "name": {"Expense"}})
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.post("/reference/add", url.Values{"action": {"add_category"}, "name": {"Food"}})
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.post("/reference/add", url.Values{"action": {"add_category"}, "name": {"Travel"}})
	require.Equal(t, http.StatusFound, rec.Code)

	var food, travel models.Category
	require.NoError(t, db.Where("user_id = ? AND name = ?", user.ID, "Food").First(&food).Error)
	require.NoError(t, db.Where("user_id = ? AND name = ?", user.ID, "Travel").First(&travel).Error)

	rec = b.post("/reference/add", url.Values{"action": {"add_subcategory"}, "category": {idStr(food.ID)}, "name": {"Groceries"}})
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.post("/reference/add", url.Values{"action": {"add_subcategory"}, "category": {idStr(travel.ID)}, "name": {"Flights"}})
	require.Equal(t, http.StatusFound, rec.Code)

	var opType models.OperationType
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&opType).Error)
	var groceries, flights models.Subcategory
	require.NoError(t, db.Where("name = ?", "Groceries").First(&groceries).Error)
	require.NoError(t, db.Where("name = ?", "Flights").First(&flights).Error)

	// a valid transfer goes through and shows up on the list
	rec = b.post("/transfer/add", url.Values{
		"status":      {idStr(business.ID)},
		"type":        {idStr(opType.ID)},
		"category":    {idStr(food.ID)},
		"subcategory": {idStr(groceries.ID)},
		"amount":      {"150"},
		"comment":     {"weekly shop"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// a cross-category subcategory re-renders the form with the field error
	rec = b.post("/transfer/add", url.Values{
		"status":      {idStr(business.ID)},
		"type":        {idStr(opType.ID)},
		"category":    {idStr(food.ID)},
		"subcategory": {idStr(flights.ID)},
		"amount":      {"80"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Subcategory must belong to the selected category")

	rec = b.get("/?category=" + idStr(food.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weekly shop")
	assert.Contains(t, rec.Body.String(), "150")

	var created models.Transfer
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&created).Error)

	// bulk-mark by status id, then read the flash on the next page view
	rec = b.post("/transfer/bulk_status", url.Values{"ids": {idStr(created.ID)}, "status": {idStr(personal.ID)}})
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.get("/")
	assert.Contains(t, rec.Body.String(), "1 transfer(s) updated")

	// the now-referenced status cannot be deleted
	rec = b.post("/status/delete/"+idStr(personal.ID), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.get("/reference")
	assert.Contains(t, rec.Body.String(), "cannot be deleted")
	var cnt int64
	require.NoError(t, db.Model(&models.Status{}).Where("id = ?", personal.ID).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)

	// the unreferenced one can
	rec = b.post("/status/delete/"+idStr(business.ID), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.NoError(t, db.Model(&models.Status{}).Where("id = ?", business.ID).Count(&cnt).Error)
	assert.Zero(t, cnt)

	// logout revokes the session server-side
	stolen := *b.cookies[sessionCookie]
	rec = b.get("/logout")
	require.Equal(t, http.StatusFound, rec.Code)
	rec = b.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)

	replay := newBrowser(t, r)
	replay.cookies[sessionCookie] = &stolen
	rec = replay.get("/")
	assert.Equal(t, http.StatusFound, rec.Code, "revoked session token must not work even if kept")
}

func TestTransfersAreOwnerScopedOverHTTP(t *testing.T) {
	r := setupTestServer(t)

	alice := newBrowser(t, r)
	alice.post("/register", url.Values{"username": {"alice"}, "password": {"secret123"}})
	alice.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}})
	alice.post("/reference/add", url.Values{"action": {"add_type"}, "name": {"Expense"}})

	var aliceUser models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&aliceUser).Error)
	aliceStatuses, err := listStatuses(aliceUser.ID)
	require.NoError(t, err)
	var opType models.OperationType
	require.NoError(t, db.Where("user_id = ?", aliceUser.ID).First(&opType).Error)

	rec := alice.post("/transfer/add", url.Values{
		"status":  {idStr(aliceStatuses[0].ID)},
		"type":    {idStr(opType.ID)},
		"amount":  {"777"},
		"comment": {"alice only"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	bob := newBrowser(t, r)
	bob.post("/register", url.Values{"username": {"bob"}, "password": {"secret123"}})
	bob.post("/login", url.Values{"username": {"bob"}, "password": {"secret123"}})

	rec = bob.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "alice only")

	// editing or deleting someone else's record quietly bounces back to the list
	var aliceTransfer models.Transfer
	require.NoError(t, db.Where("user_id = ?", aliceUser.ID).First(&aliceTransfer).Error)
	rec = bob.get("/transfer/update/" + idStr(aliceTransfer.ID))
	assert.Equal(t, http.StatusFound, rec.Code)
	rec = bob.post("/transfer/delete/"+idStr(aliceTransfer.ID), nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	var cnt int64
	require.NoError(t, db.Model(&models.Transfer{}).Where("id = ?", aliceTransfer.ID).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt, "cross-owner delete must not remove the record")
}
