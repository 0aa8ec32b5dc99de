package postgres

import (
	"fmt"
	"time"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	poolMaxConnLifetime = time.Hour
	poolMaxConnIdleTime = 30 * time.Minute
	dbPingTimeout       = 5 * time.Second

	errUserNotFound     = "user not found"
	errEmailTaken       = "email already registered"
	errRoleNotFound     = "role not found"
	errRoleNameTaken    = "role with this name already exists"
	errRoleInUse        = "role is still assigned to project members"
	errProjectNotFound  = "project not found"
	errMemberNotFound   = "member not found"
	errMemberExists     = "user is already a member of this project"
	errMemberRefMissing = "user or role not found"
	errTaskNotFound     = "task not found"
	errParentTaskAbsent = "parent task not found in this project"
	errAssigneeExists   = "user is already assigned to this task"
	errAssigneeNotFound = "assignee not found"
	errCommentNotFound  = "comment not found"
	errLabelNotFound    = "label not found"
	errLabelNameTaken   = "label with this name already exists in the project"
	errLabelAttached    = "label is already attached to this task"
	errLabelNotAttached = "label is not attached to this task"
	errTaskLabelMissing = "task or label not found"
	errTimeLogNotFound  = "time log not found"

	errFailedOpenDatabaseFmt = "failed to open database: %w"
	errFailedPingDatabaseFmt = "failed to ping database: %w"

	errFailedStartTransactionFmt  = "failed to start transaction: %w"
	errFailedCommitTransactionFmt = "failed to commit transaction: %w"

	errFailedCreateUserFmt    = "failed to create user: %w"
	errFailedGetUserFmt       = "failed to get user: %w"
	errFailedUpdateUserFmt    = "failed to update user: %w"
	errFailedRevokeSessionFmt = "failed to revoke sessions: %w"

	errFailedInsertTokenFmt  = "failed to insert refresh token: %w"
	errFailedConsumeTokenFmt = "failed to consume refresh token: %w"
	errFailedDeleteTokenFmt  = "failed to delete refresh tokens: %w"

	errFailedEncodePermissionsFmt = "failed to encode permissions: %w"
	errFailedDecodePermissionsFmt = "failed to decode permissions: %w"
	errFailedCreateRoleFmt        = "failed to create role: %w"
	errFailedSeedRoleFmt          = "failed to seed role: %w"
	errFailedGetRoleFmt           = "failed to get role: %w"
	errFailedListRolesFmt         = "failed to list roles: %w"
	errFailedScanRoleFmt          = "failed to scan role: %w"
	errFailedUpdateRoleFmt        = "failed to update role: %w"
	errFailedDeleteRoleFmt        = "failed to delete role: %w"
	errFailedCountMembershipsFmt  = "failed to count role memberships: %w"

	errFailedCreateProjectFmt    = "failed to create project: %w"
	errFailedAddOwnerMemberFmt   = "failed to add owner as project member: %w"
	errFailedGetProjectFmt       = "failed to get project: %w"
	errFailedListProjectsFmt     = "failed to list projects: %w"
	errFailedCountProjectsFmt    = "failed to count projects: %w"
	errFailedScanProjectFmt      = "failed to scan project: %w"
	errFailedUpdateProjectFmt    = "failed to update project: %w"
	errFailedDeleteProjectFmt    = "failed to delete project: %w"
	errFailedLookupAccessFmt     = "failed to look up project access: %w"
	errFailedAddMemberFmt        = "failed to add member: %w"
	errFailedGetMemberFmt        = "failed to get member: %w"
	errFailedListMembersFmt      = "failed to list members: %w"
	errFailedScanMemberFmt       = "failed to scan member: %w"
	errFailedUpdateMemberRoleFmt = "failed to update member role: %w"
	errFailedRemoveMemberFmt     = "failed to remove member: %w"

	errFailedCreateTaskFmt     = "failed to create task: %w"
	errFailedGetTaskFmt        = "failed to get task: %w"
	errFailedListTasksFmt      = "failed to list tasks: %w"
	errFailedCountTasksFmt     = "failed to count tasks: %w"
	errFailedScanTaskFmt       = "failed to scan task: %w"
	errFailedUpdateTaskFmt     = "failed to update task: %w"
	errFailedDeleteTaskFmt     = "failed to delete task: %w"
	errFailedAddAssigneeFmt    = "failed to add assignee: %w"
	errFailedRemoveAssigneeFmt = "failed to remove assignee: %w"
	errFailedListAssigneesFmt  = "failed to list assignees: %w"

	errFailedCreateLabelFmt = "failed to create label: %w"
	errFailedGetLabelFmt    = "failed to get label: %w"
	errFailedListLabelsFmt  = "failed to list labels: %w"
	errFailedScanLabelFmt   = "failed to scan label: %w"
	errFailedUpdateLabelFmt = "failed to update label: %w"
	errFailedDeleteLabelFmt = "failed to delete label: %w"
	errFailedAttachLabelFmt = "failed to attach label: %w"
	errFailedDetachLabelFmt = "failed to detach label: %w"

	errFailedCreateCommentFmt = "failed to create comment: %w"
	errFailedGetCommentFmt    = "failed to get comment: %w"
	errFailedListCommentsFmt  = "failed to list comments: %w"
	errFailedScanCommentFmt   = "failed to scan comment: %w"
	errFailedUpdateCommentFmt = "failed to update comment: %w"
	errFailedDeleteCommentFmt = "failed to delete comment: %w"

	errFailedCreateTimeLogFmt = "failed to create time log: %w"
	errFailedGetTimeLogFmt    = "failed to get time log: %w"
	errFailedListTimeLogsFmt  = "failed to list time logs: %w"
	errFailedScanTimeLogFmt   = "failed to scan time log: %w"
	errFailedUpdateTimeLogFmt = "failed to update time log: %w"
	errFailedDeleteTimeLogFmt = "failed to delete time log: %w"
	errFailedTimeReportFmt    = "failed to build time report: %w"
)

func wrapf(format string, err error) error {
	return fmt.Errorf(format, err)
}
