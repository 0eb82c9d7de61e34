// Package tools defines the todo tool surface: the static tool table, the
// argument validator and the dispatcher that runs tools against a task store.
package tools

import (
	"github.com/felixgeelhaar/mcp-todo/schema"
	"github.com/felixgeelhaar/mcp-todo/task"
)

// Tool names.
const (
	CreateTask         = "create_task"
	GetTasks           = "get_tasks"
	UpdateTask         = "update_task"
	CompleteTaskByText = "complete_task_by_text"
	AnalyzeTasks       = "analyze_tasks"
	DeleteTask         = "delete_task"
	ClearAllTasks      = "clear_all_tasks"
)

// Analysis types accepted by analyze_tasks.
const (
	AnalysisSummary     = "summary"
	AnalysisProgress    = "progress"
	AnalysisSuggestions = "suggestions"
)

// TaskIDPattern matches a canonical lower-case UUID.
const TaskIDPattern = `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`

// Definition describes a tool as advertised by tools/list.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema *schema.Schema `json:"inputSchema"`
}

// Definitions returns the tool table in advertised order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        CreateTask,
			Description: "Creates a new task in the todo list with user consent",
			InputSchema: schema.Object(map[string]*schema.Schema{
				"text": taskText("The text content of the task to create"),
			}, "text"),
		},
		{
			Name:        GetTasks,
			Description: "Retrieves the current list of tasks with filtering options",
			InputSchema: schema.Object(map[string]*schema.Schema{
				"filter": schema.String("Filter tasks by status").
					WithEnum(string(task.FilterAll), string(task.FilterPending), string(task.FilterCompleted)),
			}, "filter"),
		},
		{
			Name:        UpdateTask,
			Description: "Updates a task completion status with validation using task ID",
			InputSchema: schema.Object(map[string]*schema.Schema{
				"id":        taskID("The UUID of the task to update"),
				"completed": schema.Boolean("Whether the task is completed"),
			}, "id", "completed"),
		},
		{
			Name:        CompleteTaskByText,
			Description: "Marks a task as completed by searching for its text content (supports partial matching)",
			InputSchema: schema.Object(map[string]*schema.Schema{
				"text": taskText("The text content of the task to mark as completed (supports partial matching)"),
			}, "text"),
		},
		{
			Name:        AnalyzeTasks,
			Description: "Analyzes the current todo list and provides insights",
			InputSchema: schema.Object(map[string]*schema.Schema{
				"analysis_type": schema.String("Type of analysis to perform").
					WithEnum(AnalysisSummary, AnalysisProgress, AnalysisSuggestions),
			}, "analysis_type"),
		},
		{
			Name:        DeleteTask,
			Description: "Deletes a task from the todo list",
			InputSchema: schema.Object(map[string]*schema.Schema{
				"id": taskID("The UUID of the task to delete"),
			}, "id"),
		},
		{
			Name:        ClearAllTasks,
			Description: "Clears all tasks from the todo list",
			InputSchema: schema.Object(nil),
		},
	}
}

func taskText(description string) *schema.Schema {
	return schema.String(description).WithLength(1, task.MaxTextLength)
}

func taskID(description string) *schema.Schema {
	return schema.String(description).WithPattern(TaskIDPattern)
}
