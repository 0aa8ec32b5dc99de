package rbac

import (
	"fmt"
	"slices"
)

const (
	ResourceProject  Resource = "project"
	ResourceTask     Resource = "task"
	ResourceLabel    Resource = "label"
	ResourceComment  Resource = "comment"
	ResourceTimeLog  Resource = "time_log"
	ResourceFile     Resource = "file"
	ResourceMessage  Resource = "message"
	ResourceReport   Resource = "report"
	ResourceSettings Resource = "settings"
)

const (
	ActionCreate        Action = "create"
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionManageMembers Action = "manage_members"
	ActionAssign        Action = "assign"
	ActionUpload        Action = "upload"
	ActionDownload      Action = "download"
	ActionSend          Action = "send"
	ActionView          Action = "view"
	ActionExport        Action = "export"
	ActionManage        Action = "manage"
)

// Built-in role names. They are seeded at startup and never modified.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// vocabularyEntry keeps resources in a stable order for listing.
type vocabularyEntry struct {
	Resource Resource
	Actions  []Action
}

var vocabulary = []vocabularyEntry{
	{ResourceProject, []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManageMembers}},
	{ResourceTask, []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign}},
	{ResourceLabel, []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
	{ResourceComment, []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
	{ResourceTimeLog, []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
	{ResourceFile, []Action{ActionUpload, ActionDownload, ActionDelete}},
	{ResourceMessage, []Action{ActionSend, ActionRead, ActionDelete}},
	{ResourceReport, []Action{ActionView, ActionExport}},
	{ResourceSettings, []Action{ActionManage}},
}

var vocabularyIndex = func() map[Resource][]Action {
	idx := make(map[Resource][]Action, len(vocabulary))
	for _, e := range vocabulary {
		idx[e.Resource] = e.Actions
	}
	return idx
}()

// Vocabulary returns a copy of the known resource/action pairs.
func Vocabulary() Matrix {
	out := make(Matrix, len(vocabulary))
	for _, e := range vocabulary {
		out[e.Resource] = append([]Action(nil), e.Actions...)
	}
	return out
}

// IsKnown reports whether the pair exists in the vocabulary.
func IsKnown(resource Resource, action Action) bool {
	return slices.Contains(vocabularyIndex[resource], action)
}

// ValidateMatrix checks every resource and action against the vocabulary
// and returns one message per problem.
func ValidateMatrix(m Matrix) []string {
	var problems []string
	for _, e := range sortedResources(m) {
		allowed, ok := vocabularyIndex[e]
		if !ok {
			problems = append(problems, fmt.Sprintf(errVocabularyUnknownResourceFmt, e))
			continue
		}
		for _, a := range m[e] {
			if a == "" {
				problems = append(problems, fmt.Sprintf(errVocabularyEmptyActionFmt, e))
				continue
			}
			if !slices.Contains(allowed, a) {
				problems = append(problems, fmt.Sprintf(errVocabularyUnknownActionFmt, a, e))
			}
		}
	}
	return problems
}

// NormalizeMatrix orders each action list by vocabulary order and drops
// duplicates. Unknown entries are dropped, so validate first.
func NormalizeMatrix(m Matrix) Matrix {
	out := make(Matrix, len(m))
	for res, actions := range m {
		allowed, ok := vocabularyIndex[res]
		if !ok {
			continue
		}
		normalized := make([]Action, 0, len(actions))
		for _, a := range allowed {
			if slices.Contains(actions, a) {
				normalized = append(normalized, a)
			}
		}
		out[res] = normalized
	}
	return out
}

func sortedResources(m Matrix) []Resource {
	keys := make([]Resource, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsBuiltIn reports whether name is one of the seeded role names.
func IsBuiltIn(name string) bool {
	switch name {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	default:
		return false
	}
}

// BuiltInRoles returns the seeded roles with their matrices, in seed order.
func BuiltInRoles() []CreateRoleInput {
	return []CreateRoleInput{
		{Name: RoleAdmin, Permissions: Vocabulary()},
		{Name: RoleManager, Permissions: Matrix{
			ResourceProject:  {ActionRead, ActionUpdate, ActionManageMembers},
			ResourceTask:     {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign},
			ResourceLabel:    {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceComment:  {ActionCreate, ActionRead, ActionDelete},
			ResourceTimeLog:  {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceFile:     {ActionUpload, ActionDownload, ActionDelete},
			ResourceMessage:  {ActionSend, ActionRead},
			ResourceReport:   {ActionView, ActionExport},
			ResourceSettings: {},
		}},
		{Name: RoleMember, Permissions: Matrix{
			ResourceProject:  {ActionRead},
			ResourceTask:     {ActionCreate, ActionRead, ActionUpdate},
			ResourceLabel:    {ActionCreate, ActionRead},
			ResourceComment:  {ActionCreate, ActionRead},
			ResourceTimeLog:  {ActionCreate, ActionRead},
			ResourceFile:     {ActionUpload, ActionDownload},
			ResourceMessage:  {ActionSend, ActionRead},
			ResourceReport:   {ActionView},
			ResourceSettings: {},
		}},
	}
}
