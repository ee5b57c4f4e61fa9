package mcp

import "github.com/mark3labs/mcp-go/mcp"

var (
	idParam = mcp.WithString("id",
		mcp.Description("ID (ULID). Use either id or name, not both."),
	)
	limitParam = mcp.WithNumber("limit",
		mcp.Description("Maximum number of items to return"),
	)
)

var executeToolDef = mcp.NewTool("command_execute",
	mcp.WithDescription("Run one line of the Orbit command language, e.g. `@Sarah !Coffee #Work ^yesterday \"note\"`, "+
		"`@Tom > likes + Jazz`, `*Family !Dinner` or `!undo`. Failures come back with success=false and a message. "+
		"When requires_conversion_prompt is set, resend the same line with force_convert=true to confirm."),
	mcp.WithString("line",
		mcp.Required(),
		mcp.Description("The command line"),
	),
	mcp.WithBoolean("force_convert",
		mcp.Description("Confirm converting a single-value artifact to a list"),
	),
)

var tokenizeToolDef = mcp.NewTool("command_tokenize",
	mcp.WithDescription("Split a command line into highlighted tokens with byte spans. Never fails."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("line",
		mcp.Required(),
		mcp.Description("The command line"),
	),
)

var contactCreateToolDef = mcp.NewTool("contact_create",
	mcp.WithDescription("Create a contact. Names are unique ignoring case."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Display name"),
	),
	mcp.WithNumber("orbit",
		mcp.Description("Target orbit 0 (closest) to 4; defaults to the configured orbit"),
	),
	mcp.WithString("notes",
		mcp.Description("Markdown notes"),
	),
)

var contactFetchToolDef = mcp.NewTool("contact_fetch",
	mcp.WithDescription("Fetch a contact with artifacts, recent interactions, tag usage, drift and constellations. "+
		"Names match exactly first, then by prefix."),
	mcp.WithReadOnlyHintAnnotation(true),
	idParam,
	mcp.WithString("name",
		mcp.Description("Contact name"),
	),
	mcp.WithBoolean("include_archived",
		mcp.Description("Also match archived contacts by name"),
	),
	mcp.WithNumber("recent_limit",
		mcp.Description("Recent interactions to include (default 10)"),
	),
)

var contactListToolDef = mcp.NewTool("contact_list",
	mcp.WithDescription("List contacts ordered by name with drift state."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithBoolean("include_archived",
		mcp.Description("Include archived contacts"),
	),
	mcp.WithBoolean("drifting_only",
		mcp.Description("Only contacts past their orbit's cadence"),
	),
	mcp.WithNumber("orbit",
		mcp.Description("Only contacts in this orbit"),
	),
	limitParam,
	mcp.WithNumber("offset",
		mcp.Description("Pagination offset"),
	),
)

var contactUpdateToolDef = mcp.NewTool("contact_update",
	mcp.WithDescription("Rename a contact or change its notes or orbit. Name addressing is exact."),
	idParam,
	mcp.WithString("name",
		mcp.Description("Current contact name"),
	),
	mcp.WithString("new_name",
		mcp.Description("New display name"),
	),
	mcp.WithString("notes",
		mcp.Description("Replacement markdown notes"),
	),
	mcp.WithNumber("orbit",
		mcp.Description("New target orbit 0-4"),
	),
)

var contactDeleteToolDef = mcp.NewTool("contact_delete",
	mcp.WithDescription("Permanently delete a contact with its interactions, artifacts and memberships. Name addressing is exact."),
	mcp.WithDestructiveHintAnnotation(true),
	idParam,
	mcp.WithString("name",
		mcp.Description("Contact name"),
	),
)

var constellationCreateToolDef = mcp.NewTool("constellation_create",
	mcp.WithDescription("Create an empty constellation (a named group of contacts)."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Constellation name"),
	),
)

var constellationDeleteToolDef = mcp.NewTool("constellation_delete",
	mcp.WithDescription("Delete a constellation. Member contacts are kept."),
	mcp.WithDestructiveHintAnnotation(true),
	idParam,
	mcp.WithString("name",
		mcp.Description("Constellation name"),
	),
)

var addMemberToolDef = mcp.NewTool("constellation_add_member",
	mcp.WithDescription("Add a contact to a constellation. Names are exact."),
	mcp.WithString("constellation_id", mcp.Description("Constellation ID")),
	mcp.WithString("constellation", mcp.Description("Constellation name")),
	mcp.WithString("contact_id", mcp.Description("Contact ID")),
	mcp.WithString("contact", mcp.Description("Contact name")),
)

var removeMemberToolDef = mcp.NewTool("constellation_remove_member",
	mcp.WithDescription("Remove a contact from a constellation. Names are exact."),
	mcp.WithString("constellation_id", mcp.Description("Constellation ID")),
	mcp.WithString("constellation", mcp.Description("Constellation name")),
	mcp.WithString("contact_id", mcp.Description("Contact ID")),
	mcp.WithString("contact", mcp.Description("Contact name")),
)

var constellationListToolDef = mcp.NewTool("constellation_list",
	mcp.WithDescription("List constellations with their members."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var tagListToolDef = mcp.NewTool("tag_list",
	mcp.WithDescription("List known tags for autocomplete."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("prefix",
		mcp.Description("Only tags starting with this (case-insensitive)"),
	),
	limitParam,
)

var searchToolDef = mcp.NewTool("interaction_search",
	mcp.WithDescription("Search one contact's interactions by impulse, note or tag, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("contact_id", mcp.Description("Contact ID")),
	mcp.WithString("contact", mcp.Description("Contact name (exact, then prefix)")),
	mcp.WithString("query",
		mcp.Description("Text to match; empty lists everything"),
	),
	limitParam,
)

var timelineToolDef = mcp.NewTool("interaction_timeline",
	mcp.WithDescription("Most recent interactions across all contacts."),
	mcp.WithReadOnlyHintAnnotation(true),
	limitParam,
)

var purgeToolDef = mcp.NewTool("interaction_purge",
	mcp.WithDescription("Permanently delete undone (soft-deleted) interactions."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("contact_id", mcp.Description("Only this contact")),
	mcp.WithString("contact", mcp.Description("Only this contact (exact name)")),
	mcp.WithNumber("older_than_days",
		mcp.Description("Only interactions undone at least this many days ago"),
	),
)
