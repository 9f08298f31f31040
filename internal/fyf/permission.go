package fyf

import (
	"slices"

	"fyf-go/internal/model"
)

// CanView reports whether userID may view entry under its permission mode.
//
//	private            -> false
//	public             -> true
//	public_readonly    -> true
//	inclusive          -> member of the inclusive set
//	inclusive_readonly -> member of the inclusive set
//	other              -> false
//
// Author identity is deliberately not part of this table; callers compose
// "author or CanView" when gating requests.
func CanView(entry *model.Entry, userID string) bool {
	switch entry.Permission {
	case model.PermissionPublic, model.PermissionPublicReadonly:
		return true
	case model.PermissionInclusive, model.PermissionInclusiveReadonly:
		return slices.Contains(entry.PermissionInclusive, userID)
	default:
		return false
	}
}

// CanModify reports whether userID may modify entry under its permission
// mode.
//
//	private            -> false
//	public             -> member of the inclusive set
//	public_readonly    -> false
//	inclusive          -> member of the inclusive set
//	inclusive_readonly -> false
//	other              -> false
//
// Note the asymmetry: public is viewable by everyone but writable only by
// members of the inclusive set, exactly like inclusive. Changing the
// permission mode itself is gated separately (author-only) in UpdateEntry.
func CanModify(entry *model.Entry, userID string) bool {
	switch entry.Permission {
	case model.PermissionPublic, model.PermissionInclusive:
		return slices.Contains(entry.PermissionInclusive, userID)
	default:
		return false
	}
}
