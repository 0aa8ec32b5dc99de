package auth

const (
	ContextKeyUserID    = "user_id"
	ContextKeyProjectID = "project_id"

	headerAuthorization = "Authorization"

	paramProjectID = "project_id"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	tokenTypeAccess    = "access"
	refreshSecretBytes = 32
	refreshValueSep    = "."
)

const (
	msgMissingAuthorization     = "missing authorization token"
	msgInvalidToken             = "invalid token"
	msgTokenExpired             = "token expired"
	msgInvalidRefreshToken      = "invalid refresh token"
	msgRefreshTokenExpired      = "refresh token expired"
	msgAccountDisabled          = "account is disabled"
	msgCurrentPasswordIncorrect = "current password is incorrect"
	msgPasswordUnchanged        = "new password must differ from the current one"
	msgInvalidPassword          = "invalid password"
	msgInvalidDisplayName       = "invalid display name"
	msgInvalidAvatarURL         = "invalid avatar url"
	msgEmptyProfileUpdate       = "at least one of displayName or avatarUrl is required"
	msgUserNotAuthenticated     = "user not authenticated"
	msgInvalidUserIDCtx         = "invalid user ID in context"
	msgInvalidProjectID         = "invalid project id"
	msgUnexpectedSigningMethod  = "unexpected signing method: %v"
	msgSignTokenFailed          = "failed to sign access token"
	msgGenerateSecretFailed     = "failed to generate refresh token"
	msgHashPasswordFailed       = "failed to hash password"
	msgRehashFailed             = "failed to rehash password"
)
