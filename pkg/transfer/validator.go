package transfer

// SubcategoryRef is the minimal view of a subcategory the consistency check needs.
type SubcategoryRef struct {
	ID         uint
	CategoryID uint
}

// ValidatePair checks that a proposed (category, subcategory) pair is consistent:
// a subcategory must belong to the supplied category, and may not be set while the
// category is unset. Both absent succeeds; whether the pair is required at all is
// the surrounding form's decision, not this check's.
//
// The check is pure. Callers run it before every persist of a transfer record,
// whichever entry point the record came through.
func ValidatePair(categoryID *uint, sub *SubcategoryRef) error {
	if sub == nil {
		return nil
	}
	if categoryID == nil {
		return ErrMissingCategory
	}
	if sub.CategoryID != *categoryID {
		return ErrMismatchedSubcategory
	}
	return nil
}
