package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// TaskSortField names a column tasks can be ordered by.
type TaskSortField string

// Sortable task fields.
const (
	TaskSortCreatedAt   TaskSortField = "createdAt"
	TaskSortUpdatedAt   TaskSortField = "updatedAt"
	TaskSortDescription TaskSortField = "description"
	TaskSortCompleted   TaskSortField = "completed"
)

var taskSortAliases = map[string]TaskSortField{
	"createdAt":   TaskSortCreatedAt,
	"created_at":  TaskSortCreatedAt,
	"updatedAt":   TaskSortUpdatedAt,
	"updated_at":  TaskSortUpdatedAt,
	"description": TaskSortDescription,
	"completed":   TaskSortCompleted,
}

// TaskSort is a single ordering instruction.
type TaskSort struct {
	Field      TaskSortField
	Descending bool
}

// TaskQuery describes a filtered, ordered page of one owner's tasks. The owner
// itself is never part of the query; stores always receive it separately.
type TaskQuery struct {
	Completed *bool
	Sort      *TaskSort
	Limit     int // 0 means no limit
	Skip      int
}

// ParseTaskQuery translates list query parameters:
//
//	completed=true|false   exact match; any value other than "true" means false
//	sortBy=<field>_<dir>   dir "desc" sorts descending, anything else ascending
//	limit=<n>, skip=<n>    non-negative integers
//
// Unknown parameters, unknown sort fields and unparsable numbers are ignored.
func ParseTaskQuery(values url.Values) TaskQuery {
	var q TaskQuery

	if v := values.Get("completed"); v != "" {
		completed := v == "true"
		q.Completed = &completed
	}

	if v := values.Get("sortBy"); v != "" {
		q.Sort = parseTaskSort(v)
	}

	q.Limit = parseNonNegative(values.Get("limit"))
	q.Skip = parseNonNegative(values.Get("skip"))

	return q
}

// parseTaskSort splits "field_dir" on the last underscore so snake_case field
// names such as created_at_desc still work.
func parseTaskSort(v string) *TaskSort {
	field, dir := v, ""
	if i := strings.LastIndex(v, "_"); i >= 0 {
		field, dir = v[:i], v[i+1:]
		if dir != "asc" && dir != "desc" {
			field, dir = v, ""
		}
	}

	f, ok := taskSortAliases[field]
	if !ok {
		return nil
	}
	return &TaskSort{Field: f, Descending: dir == "desc"}
}

func parseNonNegative(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
