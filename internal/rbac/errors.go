package rbac

const (
	errVocabularyUnknownResourceFmt = "unknown resource: %s"
	errVocabularyUnknownActionFmt   = "unknown action %s on resource %s"
	errVocabularyEmptyActionFmt     = "action must not be empty on resource %s"
	errInvalidPermissions           = "invalid permission matrix"
	errInvalidRoleName              = "invalid role name"
	errInvalidRoleID                = "role id is required"
	errInvalidProjectID             = "project id is required"
	errInvalidUserID                = "user id is required"

	errBuiltInRoleImmutable = "cannot modify default roles"
	errBuiltInRoleDelete    = "cannot delete default roles"
	errRoleInUse            = "role is still assigned to project members"
	errRoleUpdateEmpty      = "nothing to update"

	errAccessDeniedFmt   = "insufficient permission: %s:%s"
	errProjectReadDenied = "you are not a member of this project"
	errCannotRemoveOwner = "cannot remove the project owner"
	errFailedLoadRoleFmt = "failed to load role %s: %w"
	errFailedSeedRoleFmt = "failed to seed role %s: %w"

	msgCacheInvalidateFailed = "role cache invalidate failed"
	msgCacheReadFailed       = "role cache read failed"
	msgCacheWriteFailed      = "role cache write failed"
)
