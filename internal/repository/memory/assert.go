package memory

import "projecthub/internal/repository"

var (
	_ repository.RoleRepository    = (*Roles)(nil)
	_ repository.ProjectRepository = (*Projects)(nil)
	_ repository.TaskRepository    = (*Tasks)(nil)
	_ repository.LabelRepository   = (*Labels)(nil)
	_ repository.CommentRepository = (*Comments)(nil)
	_ repository.TimeLogRepository = (*TimeLogs)(nil)
)
