package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Descriptions are the contract surface an MCP client sees,
// so they spell out defaults and side effects.

var previewToolDef = mcp.NewTool("rename_preview",
	mcp.WithDescription("Resolve new names for a batch of files without touching the filesystem. Files that cannot be resolved get a bracketed diagnostic placeholder instead of a name."),
	mcp.WithString("date", mcp.Description("Date prefix for generated names (default: today, YYMMDD)")),
	mcp.WithArray("paths", mcp.Required(), mcp.Description("Absolute paths of the candidate files")),
)

var executeToolDef = mcp.NewTool("rename_execute",
	mcp.WithDescription("Resolve and rename every ready file in the batch within its own directory. Replaces the previous undo generation; files that resolve to an error are skipped."),
	mcp.WithString("date", mcp.Description("Date prefix for generated names (default: today, YYMMDD)")),
	mcp.WithArray("paths", mcp.Required(), mcp.Description("Absolute paths of the candidate files")),
)

var undoToolDef = mcp.NewTool("rename_undo",
	mcp.WithDescription("Reverse the most recent executed batch, newest rename first, then discard it. Only one generation of undo is kept."),
)

var codeStoreToolDef = mcp.NewTool("project_code_store",
	mcp.WithDescription("Add a project code to the match table. Codes are matched in insertion order; duplicates are allowed and the earlier entry wins."),
	mcp.WithString("code", mcp.Required(), mcp.Description("Literal filename prefix to match")),
	mcp.WithString("full_name", mcp.Required(), mcp.Description("Project name substituted into generated filenames")),
)

var codeListToolDef = mcp.NewTool("project_code_list",
	mcp.WithDescription("List all project codes in match order."),
)

var codeDeleteToolDef = mcp.NewTool("project_code_delete",
	mcp.WithDescription("Delete a project code by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("ULID of the project code")),
)

var ruleStoreToolDef = mcp.NewTool("diff_rule_store",
	mcp.WithDescription("Add a diff rule. diff_num is matched by exact string equality (\"02\" and \"2\" are distinct). A rule missing full_name, abbr, or lang may be stored but resolves as incomplete."),
	mcp.WithString("diff_num", mcp.Required(), mcp.Description("Numeric diff key, kept as a string")),
	mcp.WithString("full_name", mcp.Description("Variant full name")),
	mcp.WithString("abbr", mcp.Description("Variant abbreviation")),
	mcp.WithString("lang", mcp.Description("Variant language tag")),
)

var ruleListToolDef = mcp.NewTool("diff_rule_list",
	mcp.WithDescription("List all diff rules in match order."),
)

var ruleDeleteToolDef = mcp.NewTool("diff_rule_delete",
	mcp.WithDescription("Delete a diff rule by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("ULID of the diff rule")),
)

var ruleSuggestToolDef = mcp.NewTool("diff_rule_suggest",
	mcp.WithDescription("List previously used values for a diff rule field."),
	mcp.WithString("field", mcp.Required(), mcp.Description("One of: full_name, abbr, lang")),
)

var profileExportToolDef = mcp.NewTool("profile_export",
	mcp.WithDescription("Write the current project code and diff rule tables to a profile file under ~/.renamer/profiles (or an allowed path)."),
	mcp.WithString("path", mcp.Description("Destination .json path (default: ~/.renamer/profiles/<name>-<timestamp>.json)")),
	mcp.WithString("name", mcp.Description("Profile name used in the default filename")),
)

var profileImportToolDef = mcp.NewTool("profile_import",
	mcp.WithDescription("Load a profile file into the tables. mode=error refuses when the tables are non-empty; mode=replace clears them first."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Profile .json path")),
	mcp.WithString("mode", mcp.Description("Collision mode: error (default) or replace")),
)

var updateCheckToolDef = mcp.NewTool("update_check",
	mcp.WithDescription("Check the configured GitHub repository for a newer release."),
)
