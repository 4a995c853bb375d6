package main

import (
	"errors"
	"strings"

	"moneytransfer/models"
	"moneytransfer/pkg/transfer"

	"gorm.io/gorm"
)

var (
	errNotFound = errors.New("record not found")
	// errReferencedEntity rejects deleting a lookup row still pointed to by a transfer.
	errReferencedEntity = errors.New("still referenced by existing transfers")
)

// FieldErrors maps form field names to user-facing validation messages. A nil or
// empty map means the input passed.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// TransferInput is the editable field set of a transfer. It deliberately has no
// creation timestamp: the store stamps that once and never lets a caller set it.
type TransferInput struct {
	StatusID      uint
	TypeID        uint
	CategoryID    *uint
	SubcategoryID *uint
	Amount        int64
	Comment       string
}

// validateTransferInput checks ownership of every referenced lookup row and runs
// the category/subcategory consistency check. This is the single place the rule
// lives; both the form path and the bulk path go through it.
func validateTransferInput(ownerID uint, in TransferInput) (FieldErrors, error) {
	fe := FieldErrors{}
	if in.StatusID == 0 {
		fe["status"] = "Select a status"
	} else {
		var cnt int64
		if err := db.Model(&models.Status{}).Where("id = ? AND user_id = ?", in.StatusID, ownerID).Count(&cnt).Error; err != nil {
			return nil, err
		}
		if cnt == 0 {
			fe["status"] = "Unknown status"
		}
	}
	if in.TypeID == 0 {
		fe["type"] = "Select an operation type"
	} else {
		var cnt int64
		if err := db.Model(&models.OperationType{}).Where("id = ? AND user_id = ?", in.TypeID, ownerID).Count(&cnt).Error; err != nil {
			return nil, err
		}
		if cnt == 0 {
			fe["type"] = "Unknown operation type"
		}
	}
	if in.CategoryID != nil {
		var cnt int64
		if err := db.Model(&models.Category{}).Where("id = ? AND user_id = ?", *in.CategoryID, ownerID).Count(&cnt).Error; err != nil {
			return nil, err
		}
		if cnt == 0 {
			fe["category"] = "Unknown category"
		}
	}
	var subRef *transfer.SubcategoryRef
	if in.SubcategoryID != nil {
		var sub models.Subcategory
		err := db.Where("id = ? AND user_id = ?", *in.SubcategoryID, ownerID).First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fe["subcategory"] = "Unknown subcategory"
		case err != nil:
			return nil, err
		default:
			subRef = &transfer.SubcategoryRef{ID: sub.ID, CategoryID: sub.CategoryID}
		}
	}
	if len(fe) == 0 {
		switch err := transfer.ValidatePair(in.CategoryID, subRef); {
		case errors.Is(err, transfer.ErrMissingCategory):
			fe["category"] = "Select a category first"
		case errors.Is(err, transfer.ErrMismatchedSubcategory):
			fe["subcategory"] = "Subcategory must belong to the selected category"
		}
	}
	if len(in.Comment) > 255 {
		fe["comment"] = "Comment too long (max 255)"
	}
	if len(fe) == 0 {
		return nil, nil
	}
	return fe, nil
}

// createTransfer validates and persists a new transfer for ownerID. CreatedAt is
// assigned by the store; nothing is written when validation fails.
func createTransfer(ownerID uint, in TransferInput) (*models.Transfer, FieldErrors, error) {
	fe, err := validateTransferInput(ownerID, in)
	if err != nil || fe.Any() {
		return nil, fe, err
	}
	t := models.Transfer{
		UserID:        ownerID,
		StatusID:      in.StatusID,
		TypeID:        in.TypeID,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Amount:        in.Amount,
		Comment:       in.Comment,
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, nil, err
	}
	return &t, nil, nil
}

// updateTransfer replaces the editable fields of an owned transfer. The merged
// record is validated before anything is written; CreatedAt is never part of the
// update set.
func updateTransfer(id, ownerID uint, in TransferInput) (FieldErrors, error) {
	var t models.Transfer
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	fe, err := validateTransferInput(ownerID, in)
	if err != nil || fe.Any() {
		return fe, err
	}
	updates := map[string]any{
		"status_id":      in.StatusID,
		"type_id":        in.TypeID,
		"category_id":    in.CategoryID,
		"subcategory_id": in.SubcategoryID,
		"amount":         in.Amount,
		"comment":        in.Comment,
	}
	if err := db.Model(&t).Updates(updates).Error; err != nil {
		return nil, err
	}
	return nil, nil
}

func getTransfer(id, ownerID uint) (*models.Transfer, error) {
	var t models.Transfer
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &t, nil
}

// deleteTransfer removes an owned transfer. Deleting own records is unconditional.
func deleteTransfer(id, ownerID uint) error {
	res := db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Transfer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

// bulkSetTransferStatus marks the given owned transfers with an owned status.
// Every record goes through the same validation as a form update, so the
// category/subcategory rule cannot be bypassed here. Returns how many were updated.
func bulkSetTransferStatus(ownerID uint, ids []uint, statusID uint) (int, error) {
	var cnt int64
	if err := db.Model(&models.Status{}).Where("id = ? AND user_id = ?", statusID, ownerID).Count(&cnt).Error; err != nil {
		return 0, err
	}
	if cnt == 0 {
		return 0, errNotFound
	}
	var items []models.Transfer
	if err := db.Where("user_id = ? AND id IN ?", ownerID, ids).Find(&items).Error; err != nil {
		return 0, err
	}
	updated := 0
	for _, t := range items {
		in := TransferInput{
			StatusID:      statusID,
			TypeID:        t.TypeID,
			CategoryID:    t.CategoryID,
			SubcategoryID: t.SubcategoryID,
			Amount:        t.Amount,
			Comment:       t.Comment,
		}
		fe, err := validateTransferInput(ownerID, in)
		if err != nil {
			return updated, err
		}
		if fe.Any() {
			continue // leave inconsistent legacy rows untouched
		}
		if err := db.Model(&models.Transfer{}).Where("id = ?", t.ID).Update("status_id", statusID).Error; err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// applyTransferFilters narrows q to the present criteria fields. Owner scoping is
// the caller's job and happens before this.
func applyTransferFilters(q *gorm.DB, crit transfer.Criteria) *gorm.DB {
	if crit.Category != 0 {
		q = q.Where("category_id = ?", crit.Category)
	}
	if crit.Subcategory != 0 {
		q = q.Where("subcategory_id = ?", crit.Subcategory)
	}
	if crit.Status != 0 {
		q = q.Where("status_id = ?", crit.Status)
	}
	if crit.Type != 0 {
		q = q.Where("type_id = ?", crit.Type)
	}
	if !crit.DateFrom.IsZero() {
		q = q.Where("created_at >= ?", crit.DateFrom)
	}
	if !crit.DateTo.IsZero() {
		// inclusive day bound
		q = q.Where("created_at < ?", crit.DateTo.AddDate(0, 0, 1))
	}
	return q
}

// listTransfers returns one page of the owner's transfers matching crit, plus the
// sum of amounts over the whole filtered (pre-pagination) set.
func listTransfers(ownerID uint, crit transfer.Criteria, page, perPage int) ([]models.Transfer, int64, transfer.PageInfo, error) {
	filtered := func() *gorm.DB {
		return applyTransferFilters(db.Model(&models.Transfer{}).Where("user_id = ?", ownerID), crit)
	}

	var count int64
	if err := filtered().Count(&count).Error; err != nil {
		return nil, 0, transfer.PageInfo{}, err
	}
	var agg struct{ Total int64 }
	if err := filtered().Select("COALESCE(SUM(amount), 0) AS total").Scan(&agg).Error; err != nil {
		return nil, 0, transfer.PageInfo{}, err
	}

	info := transfer.NewPageInfo(page, perPage, count)

	q := applyTransferFilters(db.Where("user_id = ?", ownerID), crit).
		Preload("Status").Preload("Type").Preload("Category").Preload("Subcategory")
	switch crit.Sum {
	case transfer.SortAmountAsc:
		q = q.Order("amount asc")
	case transfer.SortAmountDesc:
		q = q.Order("amount desc")
	default:
		q = q.Order("created_at desc")
	}
	var items []models.Transfer
	if err := q.Offset(info.Offset()).Limit(info.PerPage).Find(&items).Error; err != nil {
		return nil, 0, transfer.PageInfo{}, err
	}
	return items, agg.Total, info, nil
}

// ---- taxonomy operations ----

func listStatuses(ownerID uint) ([]models.Status, error) {
	var out []models.Status
	err := db.Where("user_id = ?", ownerID).Order("name").Find(&out).Error
	return out, err
}

func listOperationTypes(ownerID uint) ([]models.OperationType, error) {
	var out []models.OperationType
	err := db.Where("user_id = ?", ownerID).Order("name").Find(&out).Error
	return out, err
}

func listCategories(ownerID uint) ([]models.Category, error) {
	var out []models.Category
	err := db.Where("user_id = ?", ownerID).Order("name").Preload("Subcategories").Find(&out).Error
	return out, err
}

func listSubcategories(ownerID uint) ([]models.Subcategory, error) {
	var out []models.Subcategory
	err := db.Where("user_id = ?", ownerID).Order("name").Preload("Category").Find(&out).Error
	return out, err
}

func validateName(name string) (string, FieldErrors) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", FieldErrors{"name": "Name required"}
	}
	if len(name) > 100 {
		return "", FieldErrors{"name": "Name too long (max 100)"}
	}
	return name, nil
}

func createStatus(ownerID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	return nil, db.Create(&models.Status{UserID: ownerID, Name: name}).Error
}

func updateStatus(id, ownerID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	res := db.Model(&models.Status{}).Where("id = ? AND user_id = ?", id, ownerID).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errNotFound
	}
	return nil, nil
}

// deleteStatus rejects the delete while any transfer still references the status.
func deleteStatus(id, ownerID uint) error {
	var status models.Status
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound
		}
		return err
	}
	var refs int64
	if err := db.Model(&models.Transfer{}).Where("status_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errReferencedEntity
	}
	return db.Delete(&status).Error
}

func createOperationType(ownerID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	return nil, db.Create(&models.OperationType{UserID: ownerID, Name: name}).Error
}

func updateOperationType(id, ownerID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	res := db.Model(&models.OperationType{}).Where("id = ? AND user_id = ?", id, ownerID).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errNotFound
	}
	return nil, nil
}

func deleteOperationType(id, ownerID uint) error {
	var opType models.OperationType
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&opType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound
		}
		return err
	}
	var refs int64
	if err := db.Model(&models.Transfer{}).Where("type_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errReferencedEntity
	}
	return db.Delete(&opType).Error
}

func createCategory(ownerID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	return nil, db.Create(&models.Category{UserID: ownerID, Name: name}).Error
}

func updateCategory(id, ownerID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	res := db.Model(&models.Category{}).Where("id = ? AND user_id = ?", id, ownerID).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errNotFound
	}
	return nil, nil
}

// deleteCategory cascades to the category's subcategories, so it is rejected
// while any transfer references the category itself or any of its subcategories.
func deleteCategory(id, ownerID uint) error {
	var cat models.Category
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound
		}
		return err
	}
	var refs int64
	if err := db.Model(&models.Transfer{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errReferencedEntity
	}
	subIDs := db.Model(&models.Subcategory{}).Select("id").Where("category_id = ?", id)
	if err := db.Model(&models.Transfer{}).Where("subcategory_id IN (?)", subIDs).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errReferencedEntity
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
}

func createSubcategory(ownerID, categoryID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	var cnt int64
	if err := db.Model(&models.Category{}).Where("id = ? AND user_id = ?", categoryID, ownerID).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt == 0 {
		return FieldErrors{"category": "Select a category"}, nil
	}
	if err := db.Model(&models.Subcategory{}).Where("category_id = ? AND name = ?", categoryID, name).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return FieldErrors{"name": "Subcategory already exists in this category"}, nil
	}
	if err := db.Create(&models.Subcategory{UserID: ownerID, CategoryID: categoryID, Name: name}).Error; err != nil {
		if isUniqueConstraintError(err) { // race after the pre-check
			return FieldErrors{"name": "Subcategory already exists in this category"}, nil
		}
		return nil, err
	}
	return nil, nil
}

func updateSubcategory(id, ownerID, categoryID uint, name string) (FieldErrors, error) {
	name, fe := validateName(name)
	if fe.Any() {
		return fe, nil
	}
	var sub models.Subcategory
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	var cnt int64
	if err := db.Model(&models.Category{}).Where("id = ? AND user_id = ?", categoryID, ownerID).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt == 0 {
		return FieldErrors{"category": "Select a category"}, nil
	}
	if err := db.Model(&models.Subcategory{}).Where("category_id = ? AND name = ? AND id <> ?", categoryID, name, id).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return FieldErrors{"name": "Subcategory already exists in this category"}, nil
	}
	if categoryID != sub.CategoryID {
		// moving the subcategory would break the category pairing on existing transfers
		var refs int64
		if err := db.Model(&models.Transfer{}).Where("subcategory_id = ?", id).Count(&refs).Error; err != nil {
			return nil, err
		}
		if refs > 0 {
			return FieldErrors{"category": "Subcategory is used by transfers and cannot move to another category"}, nil
		}
	}
	updates := map[string]any{"category_id": categoryID, "name": name}
	if err := db.Model(&sub).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return FieldErrors{"name": "Subcategory already exists in this category"}, nil
		}
		return nil, err
	}
	return nil, nil
}

func deleteSubcategory(id, ownerID uint) error {
	var sub models.Subcategory
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound
		}
		return err
	}
	var refs int64
	if err := db.Model(&models.Transfer{}).Where("subcategory_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errReferencedEntity
	}
	return db.Delete(&sub).Error
}
