package main

import (
	"net/http"
	"net/url"

	"moneytransfer/pkg/transfer"

	"github.com/gin-gonic/gin"
)

// referencePerPage is the page size of each list on the reference screen.
const referencePerPage = 5

// refPage paginates one reference list independently of the others via prefixed
// query parameters (cat_page, sub_page, stat_page, type_page).
func refPage[T any](q url.Values, prefix string, items []T) ([]T, transfer.PageInfo) {
	info := transfer.NewPageInfo(transfer.ParsePage(q.Get(prefix+"page")), referencePerPage, int64(len(items)))
	lo := info.Offset()
	hi := lo + info.PerPage
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi], info
}

// referenceHandler shows the four lookup lists, each with its own pagination.
func referenceHandler(c *gin.Context) {
	user := currentUser(c)
	q := c.Request.URL.Query()

	categories, _ := listCategories(user.ID)
	subcategories, _ := listSubcategories(user.ID)
	statuses, _ := listStatuses(user.ID)
	types, _ := listOperationTypes(user.ID)

	catItems, catPage := refPage(q, "cat_", categories)
	subItems, subPage := refPage(q, "sub_", subcategories)
	statItems, statPage := refPage(q, "stat_", statuses)
	typeItems, typePage := refPage(q, "type_", types)

	c.HTML(http.StatusOK, "reference.html", gin.H{
		"Username":      user.Username,
		"Categories":    catItems,
		"CatPage":       catPage,
		"Subcategories": subItems,
		"SubPage":       subPage,
		"Statuses":      statItems,
		"StatPage":      statPage,
		"Types":         typeItems,
		"TypePage":      typePage,
		"Flash":         takeFlash(c),
	})
}

func renderReferenceAdd(c *gin.Context, fe FieldErrors, failedAction string) {
	user := currentUser(c)
	categories, _ := listCategories(user.ID)
	subcategories, _ := listSubcategories(user.ID)
	statuses, _ := listStatuses(user.ID)
	types, _ := listOperationTypes(user.ID)
	c.HTML(http.StatusOK, "reference_add.html", gin.H{
		"Username":         user.Username,
		"Categories":       categories,
		"Subcategories":    subcategories,
		"Statuses":         statuses,
		"Types":            types,
		"CategoryCount":    len(categories),
		"SubcategoryCount": len(subcategories),
		"StatusCount":      len(statuses),
		"TypeCount":        len(types),
		"Errors":           fe,
		"FailedAction":     failedAction,
		"Flash":            takeFlash(c),
	})
}

func referenceAddFormHandler(c *gin.Context) {
	renderReferenceAdd(c, nil, "")
}

// referenceAddHandler serves one screen with a small form per lookup kind; the
// action field says which one was submitted.
func referenceAddHandler(c *gin.Context) {
	user := currentUser(c)
	action := c.PostForm("action")
	name := c.PostForm("name")

	var fe FieldErrors
	var err error
	switch action {
	case "add_status":
		fe, err = createStatus(user.ID, name)
	case "add_type":
		fe, err = createOperationType(user.ID, name)
	case "add_category":
		fe, err = createCategory(user.ID, name)
	case "add_subcategory":
		fe, err = createSubcategory(user.ID, parseFormID(c.PostForm("category")), name)
	default:
		c.Redirect(http.StatusFound, "/reference/add")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "save failed")
		return
	}
	if fe.Any() {
		renderReferenceAdd(c, fe, action)
		return
	}
	c.Redirect(http.StatusFound, "/reference/add")
}

// ---- single-entity edit screens ----

func renderReferenceEdit(c *gin.Context, kind, name, action string, fe FieldErrors) {
	user := currentUser(c)
	c.HTML(http.StatusOK, "reference_edit.html", gin.H{
		"Username": user.Username,
		"Kind":     kind,
		"Name":     name,
		"Action":   action,
		"Errors":   fe,
	})
}

func statusEditFormHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	statuses, _ := listStatuses(user.ID)
	for _, s := range statuses {
		if s.ID == id {
			renderReferenceEdit(c, "status", s.Name, "/status/edit/"+c.Param("id"), nil)
			return
		}
	}
	c.Redirect(http.StatusFound, "/reference")
}

func statusEditHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	fe, err := updateStatus(id, user.ID, c.PostForm("name"))
	if err == errNotFound {
		c.Redirect(http.StatusFound, "/reference")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "save failed")
		return
	}
	if fe.Any() {
		renderReferenceEdit(c, "status", c.PostForm("name"), "/status/edit/"+c.Param("id"), fe)
		return
	}
	c.Redirect(http.StatusFound, "/reference")
}

func statusDeleteHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	switch err := deleteStatus(id, user.ID); err {
	case nil, errNotFound:
	case errReferencedEntity:
		setFlash(c, "Status is still used by transfers and cannot be deleted")
	default:
		c.String(http.StatusInternalServerError, "delete failed")
		return
	}
	c.Redirect(http.StatusFound, "/reference")
}

func typeEditFormHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	types, _ := listOperationTypes(user.ID)
	for _, t := range types {
		if t.ID == id {
			renderReferenceEdit(c, "operation type", t.Name, "/type/edit/"+c.Param("id"), nil)
			return
		}
	}
	c.Redirect(http.StatusFound, "/reference")
}

func typeEditHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	fe, err := updateOperationType(id, user.ID, c.PostForm("name"))
	if err == errNotFound {
		c.Redirect(http.StatusFound, "/reference")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "save failed")
		return
	}
	if fe.Any() {
		renderReferenceEdit(c, "operation type", c.PostForm("name"), "/type/edit/"+c.Param("id"), fe)
		return
	}
	c.Redirect(http.StatusFound, "/reference")
}

func typeDeleteHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	switch err := deleteOperationType(id, user.ID); err {
	case nil, errNotFound:
	case errReferencedEntity:
		setFlash(c, "Operation type is still used by transfers and cannot be deleted")
	default:
		c.String(http.StatusInternalServerError, "delete failed")
		return
	}
	c.Redirect(http.StatusFound, "/reference")
}

// The category edit endpoints serve both categories and subcategories from one
// screen: the id is resolved against categories first, then subcategories.

func categoryEditFormHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	action := "/category/edit/" + c.Param("id")

	categories, _ := listCategories(user.ID)
	for _, cat := range categories {
		if cat.ID == id {
			c.HTML(http.StatusOK, "category_form.html", gin.H{
				"Username": user.Username,
				"Kind":     "category",
				"Name":     cat.Name,
				"Action":   action,
				"Errors":   FieldErrors(nil),
			})
			return
		}
	}
	subcategories, _ := listSubcategories(user.ID)
	for _, sub := range subcategories {
		if sub.ID == id {
			c.HTML(http.StatusOK, "category_form.html", gin.H{
				"Username":   user.Username,
				"Kind":       "subcategory",
				"Name":       sub.Name,
				"CategoryID": sub.CategoryID,
				"Categories": categories,
				"Action":     action,
				"Errors":     FieldErrors(nil),
			})
			return
		}
	}
	c.Redirect(http.StatusFound, "/reference")
}

func categoryEditHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	action := "/category/edit/" + c.Param("id")
	name := c.PostForm("name")

	fe, err := updateCategory(id, user.ID, name)
	if err == nil && !fe.Any() {
		c.Redirect(http.StatusFound, "/reference")
		return
	}
	if err == errNotFound {
		// not a category; try the subcategory with that id
		categoryID := parseFormID(c.PostForm("category"))
		fe, err = updateSubcategory(id, user.ID, categoryID, name)
		if err == errNotFound {
			c.Redirect(http.StatusFound, "/reference")
			return
		}
		if err != nil {
			c.String(http.StatusInternalServerError, "save failed")
			return
		}
		if fe.Any() {
			categories, _ := listCategories(user.ID)
			c.HTML(http.StatusOK, "category_form.html", gin.H{
				"Username":   user.Username,
				"Kind":       "subcategory",
				"Name":       name,
				"CategoryID": categoryID,
				"Categories": categories,
				"Action":     action,
				"Errors":     fe,
			})
			return
		}
		c.Redirect(http.StatusFound, "/reference")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "save failed")
		return
	}
	c.HTML(http.StatusOK, "category_form.html", gin.H{
		"Username": user.Username,
		"Kind":     "category",
		"Name":     name,
		"Action":   action,
		"Errors":   fe,
	})
}

func categoryDeleteHandler(c *gin.Context) {
	user := currentUser(c)
	id := parseFormID(c.Param("id"))
	err := deleteCategory(id, user.ID)
	if err == errNotFound {
		err = deleteSubcategory(id, user.ID)
	}
	switch err {
	case nil, errNotFound:
	case errReferencedEntity:
		setFlash(c, "Still used by transfers and cannot be deleted")
	default:
		c.String(http.StatusInternalServerError, "delete failed")
		return
	}
	c.Redirect(http.StatusFound, "/reference")
}
