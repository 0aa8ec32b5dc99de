package postgres

import "projecthub/internal/repository"

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.TokenRepository   = (*TokenRepository)(nil)
	_ repository.RoleRepository    = (*RoleRepository)(nil)
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
	_ repository.TaskRepository    = (*TaskRepository)(nil)
	_ repository.CommentRepository = (*CommentRepository)(nil)
	_ repository.TimeLogRepository = (*TimeLogRepository)(nil)
)
