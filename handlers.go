package main

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moneytransfer/models"
	"moneytransfer/pkg/transfer"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "session"

func setupRoutes(r *gin.Engine) {
	r.GET("/login", loginPageHandler)
	r.POST("/login", loginSubmitHandler)
	r.GET("/logout", logoutHandler)
	r.GET("/register", registerPageHandler)
	r.POST("/register", registerSubmitHandler)

	auth := r.Group("")
	auth.Use(sessionAuthMiddleware())
	auth.GET("/", indexHandler)
	auth.GET("/transfer/add", transferAddFormHandler)
	auth.POST("/transfer/add", transferAddHandler)
	auth.GET("/transfer/update/:id", transferEditFormHandler)
	auth.POST("/transfer/update/:id", transferUpdateHandler)
	auth.POST("/transfer/delete/:id", transferDeleteHandler)
	auth.POST("/transfer/bulk_status", transferBulkStatusHandler)

	auth.GET("/reference", referenceHandler)
	auth.GET("/reference/add", referenceAddFormHandler)
	auth.POST("/reference/add", referenceAddHandler)
	auth.GET("/status/edit/:id", statusEditFormHandler)
	auth.POST("/status/edit/:id", statusEditHandler)
	auth.POST("/status/delete/:id", statusDeleteHandler)
	auth.GET("/type/edit/:id", typeEditFormHandler)
	auth.POST("/type/edit/:id", typeEditHandler)
	auth.POST("/type/delete/:id", typeDeleteHandler)
	auth.GET("/category/edit/:id", categoryEditFormHandler)
	auth.POST("/category/edit/:id", categoryEditHandler)
	auth.POST("/category/delete/:id", categoryDeleteHandler)
}

// sessionAuthMiddleware resolves the session cookie into a user. Browser flows
// get a redirect to the login page rather than a 401.
func sessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(sessionCookie)
		if err != nil || tokenString == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		user, role, err := resolveSession(tokenString)
		if err != nil {
			c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set("user", user)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

// currentUser returns the user set by sessionAuthMiddleware.
func currentUser(c *gin.Context) models.User {
	u, _ := c.Get("user")
	user, _ := u.(models.User)
	return user
}

// Flash messages ride in a short-lived cookie, read once and cleared on render.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie("flash", url.QueryEscape(msg), 60, "/", "", false, true)
}

func takeFlash(c *gin.Context) string {
	val, err := c.Cookie("flash")
	if err != nil || val == "" {
		return ""
	}
	c.SetCookie("flash", "", -1, "/", "", false, true)
	msg, _ := url.QueryUnescape(val)
	return msg
}

// ---- auth pages ----

func loginPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Flash": takeFlash(c)})
}

func loginSubmitHandler(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	user, err := Authenticate(username, password)
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"Error": "Invalid username or password", "Username": username})
		return
	}
	tokenString, err := issueSession(user)
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"Error": "Failed to start session", "Username": username})
		return
	}
	c.SetCookie(sessionCookie, tokenString, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func logoutHandler(c *gin.Context) {
	if tokenString, err := c.Cookie(sessionCookie); err == nil && tokenString != "" {
		revokeSession(tokenString)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

func registerPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func registerSubmitHandler(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	email := c.PostForm("email")
	if err := RegisterUser(username, password, email); err != nil {
		c.HTML(http.StatusOK, "register.html", gin.H{"Error": err.Error(), "Username": username, "Email": email})
		return
	}
	setFlash(c, "Account created, you can sign in now")
	c.Redirect(http.StatusFound, "/login")
}

// ---- transfer list ----

func indexHandler(c *gin.Context) {
	user := currentUser(c)
	q := c.Request.URL.Query()
	crit := transfer.ParseCriteria(q)
	perPage := transfer.NormalizePerPage(q.Get("per_page"), transfer.DefaultPerPage)
	page := transfer.ParsePage(q.Get("page"))

	items, total, info, err := listTransfers(user.ID, crit, page, perPage)
	if err != nil {
		c.String(http.StatusInternalServerError, "query failed")
		return
	}
	categories, _ := listCategories(user.ID)
	subcategories, _ := listSubcategories(user.ID)
	statuses, _ := listStatuses(user.ID)
	types, _ := listOperationTypes(user.ID)

	base := crit.Values()
	base.Set("per_page", strconv.Itoa(perPage))
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Username":       user.Username,
		"Transfers":      items,
		"Page":           info,
		"Total":          total,
		"Categories":     categories,
		"Subcategories":  subcategories,
		"Statuses":       statuses,
		"Types":          types,
		"Filters":        crit,
		"DateFrom":       fmtDate(crit.DateFrom),
		"DateTo":         fmtDate(crit.DateTo),
		"PerPage":        perPage,
		"PerPageChoices": transfer.PerPageChoices,
		"BaseQuery":      base.Encode(),
		"Flash":          takeFlash(c),
	})
}

// ---- transfer forms ----

// transferFormValues holds raw form input so a failed submit re-renders what the
// user typed.
type transferFormValues struct {
	Status      uint
	Type        uint
	Category    uint
	Subcategory uint
	Amount      string
	Comment     string
}

func renderTransferForm(c *gin.Context, title, action string, vals transferFormValues, fe FieldErrors) {
	user := currentUser(c)
	categories, _ := listCategories(user.ID)
	subcategories, _ := listSubcategories(user.ID)
	statuses, _ := listStatuses(user.ID)
	types, _ := listOperationTypes(user.ID)
	c.HTML(http.StatusOK, "transfer_form.html", gin.H{
		"Username":      user.Username,
		"PageTitle":     title,
		"Action":        action,
		"Values":        vals,
		"Errors":        fe,
		"Categories":    categories,
		"Subcategories": subcategories,
		"Statuses":      statuses,
		"Types":         types,
	})
}

func parseTransferForm(c *gin.Context) (TransferInput, transferFormValues, FieldErrors) {
	vals := transferFormValues{
		Status:      parseFormID(c.PostForm("status")),
		Type:        parseFormID(c.PostForm("type")),
		Category:    parseFormID(c.PostForm("category")),
		Subcategory: parseFormID(c.PostForm("subcategory")),
		Amount:      strings.TrimSpace(c.PostForm("amount")),
		Comment:     strings.TrimSpace(c.PostForm("comment")),
	}
	in := TransferInput{
		StatusID: vals.Status,
		TypeID:   vals.Type,
		Comment:  vals.Comment,
	}
	if vals.Category != 0 {
		id := vals.Category
		in.CategoryID = &id
	}
	if vals.Subcategory != 0 {
		id := vals.Subcategory
		in.SubcategoryID = &id
	}
	fe := FieldErrors{}
	if vals.Amount == "" {
		fe["amount"] = "Amount required"
	} else if v, err := strconv.ParseInt(vals.Amount, 10, 64); err != nil {
		fe["amount"] = "Amount must be a whole number"
	} else {
		in.Amount = v
	}
	if len(fe) == 0 {
		fe = nil
	}
	return in, vals, fe
}

func transferAddFormHandler(c *gin.Context) {
	renderTransferForm(c, "New transfer", "/transfer/add", transferFormValues{}, nil)
}

func transferAddHandler(c *gin.Context) {
	user := currentUser(c)
	in, vals, fe := parseTransferForm(c)
	if fe.Any() {
		renderTransferForm(c, "New transfer", "/transfer/add", vals, fe)
		return
	}
	_, fe, err := createTransfer(user.ID, in)
	if err != nil {
		c.String(http.StatusInternalServerError, "create failed")
		return
	}
	if fe.Any() {
		renderTransferForm(c, "New transfer", "/transfer/add", vals, fe)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func transferEditFormHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	t, err := getTransfer(id, user.ID)
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	vals := transferFormValues{
		Status:  t.StatusID,
		Type:    t.TypeID,
		Amount:  strconv.FormatInt(t.Amount, 10),
		Comment: t.Comment,
	}
	if t.CategoryID != nil {
		vals.Category = *t.CategoryID
	}
	if t.SubcategoryID != nil {
		vals.Subcategory = *t.SubcategoryID
	}
	action := "/transfer/update/" + strconv.FormatUint(uint64(id), 10)
	renderTransferForm(c, "Edit transfer #"+strconv.FormatUint(uint64(id), 10), action, vals, nil)
}

func transferUpdateHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	in, vals, fe := parseTransferForm(c)
	action := "/transfer/update/" + strconv.FormatUint(uint64(id), 10)
	title := "Edit transfer #" + strconv.FormatUint(uint64(id), 10)
	if fe.Any() {
		renderTransferForm(c, title, action, vals, fe)
		return
	}
	fe, err := updateTransfer(id, user.ID, in)
	if err == errNotFound {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "update failed")
		return
	}
	if fe.Any() {
		renderTransferForm(c, title, action, vals, fe)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// transferDeleteHandler removes an owned transfer; a missing or foreign id is a
// silent no-op back to the list.
func transferDeleteHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	if err := deleteTransfer(id, user.ID); err != nil && err != errNotFound {
		c.String(http.StatusInternalServerError, "delete failed")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// transferBulkStatusHandler marks the selected transfers with one of the owner's
// statuses. The target is always a posted status id, never a status name.
func transferBulkStatusHandler(c *gin.Context) {
	user := currentUser(c)
	statusID := parseFormID(c.PostForm("status"))
	var ids []uint
	for _, s := range c.PostFormArray("ids") {
		if id := parseFormID(s); id != 0 {
			ids = append(ids, id)
		}
	}
	if statusID == 0 || len(ids) == 0 {
		setFlash(c, "Select transfers and a status first")
		c.Redirect(http.StatusFound, "/")
		return
	}
	updated, err := bulkSetTransferStatus(user.ID, ids, statusID)
	if err == errNotFound {
		setFlash(c, "Unknown status")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "bulk update failed")
		return
	}
	setFlash(c, strconv.Itoa(updated)+" transfer(s) updated")
	c.Redirect(http.StatusFound, "/")
}

// ---- small helpers ----

func parseFormID(s string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
