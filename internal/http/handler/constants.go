package handler

const (
	paramID        = "id"
	paramTaskID    = "task_id"
	paramUserID    = "user_id"
	paramCommentID = "comment_id"
	paramLabelID   = "label_id"
	paramTimeLogID = "time_log_id"

	queryPage       = "page"
	queryLimit      = "limit"
	queryStatus     = "status"
	queryPriority   = "priority"
	queryAssigneeID = "assigneeId"
	queryLabelID    = "labelId"
	querySearch     = "search"
	queryAction     = "action"
	queryEntityType = "entityType"
	queryFrom       = "from"
	queryTo         = "to"

	dateOnlyLayout = "2006-01-02"
)

const (
	msgSuccess  = "Success"
	msgCreated  = "Created"
	msgDeleted  = "Deleted"
	msgLoggedIn = "Logged in"
	msgLogout   = "Logged out"

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidIDFmt            = "invalid %s"
	msgInvalidQueryIntFmt      = "%s must be an integer"
	msgInvalidDateFmt          = "invalid date: %s"
	msgRefreshTokenRequired    = "refreshToken is required"
	msgPasswordChanged         = "Password changed"
	msgAccountDeactivated      = "Account deactivated"
)
