package mcp

import "github.com/mark3labs/mcp-go/mcp"

var planCreateToolDef = mcp.NewTool("plan_create",
	mcp.WithDescription("Generate one or more new projects with tasks from a free-text request and save them."),
	mcp.WithString("user_input",
		mcp.Required(),
		mcp.Description("What to plan, in plain language"),
	),
)

var planPredictToolDef = mcp.NewTool("plan_predict",
	mcp.WithDescription("Append generated follow-up tasks to a saved project. Existing tasks are kept."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("ID of the project to extend"),
	),
)

var planOptimizeToolDef = mcp.NewTool("plan_optimize",
	mcp.WithDescription("Replace the task list of a saved project with a generated, reorganized one."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("ID of the project to rewrite"),
	),
)

var projectFetchToolDef = mcp.NewTool("project_fetch",
	mcp.WithDescription("Fetch a project and its tasks by ID."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
)

var projectListToolDef = mcp.NewTool("project_list",
	mcp.WithDescription("List saved projects, most recently updated first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit",
		mcp.Description("Maximum projects to return (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of projects to skip"),
	),
)

var projectExportToolDef = mcp.NewTool("project_export",
	mcp.WithDescription("Render a project to a markdown, HTML or JSON file."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default markdown)"),
		mcp.Enum("markdown", "html", "json"),
	),
	mcp.WithString("path",
		mcp.Description("Output file path (default ~/.specforge/exports/<name>-<timestamp>.<ext>)"),
	),
)

var projectDeleteToolDef = mcp.NewTool("project_delete",
	mcp.WithDescription("Permanently delete a project and its tasks."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ID"),
	),
)

var jsonRepairToolDef = mcp.NewTool("json_repair",
	mcp.WithDescription("Repair malformed JSON-like text (fences, comments, single quotes, trailing commas) and return strict JSON."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to repair"),
	),
)
