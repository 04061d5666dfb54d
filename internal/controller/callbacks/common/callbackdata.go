package common

// Callback data. Telegram caps it at 64 bytes, so prefixes are short.
const (
	Noop = "noop"

	// Template editor
	EditorSlot   = "ed:slot:" // ed:slot:09:30
	EditorPeriod = "ed:per:"  // ed:per:morning
	EditorDay    = "ed:day:"  // ed:day:mon
	EditorStatus = "ed:st:"   // ed:st:conditional
	EditorAll    = "ed:all"
	EditorClear  = "ed:clr"
	EditorCopy   = "ed:copy"
	EditorSave   = "ed:save"
	EditorCancel = "ed:cancel"

	// Templates
	TemplateList          = "tpl:list"
	TemplatePage          = "tpl:page:" // tpl:page:1
	TemplateNew           = "tpl:new"
	TemplateView          = "tpl:view:"  // tpl:view:12
	TemplateEdit          = "tpl:edit:"  // tpl:edit:12
	TemplateApply         = "tpl:apply:" // tpl:apply:12
	TemplateDelete        = "tpl:del:"   // tpl:del:12
	TemplateDeleteConfirm = "tpl:delok:" // tpl:delok:12

	// Apply dialog
	ApplyOverwrite = "ap:ow"
	ApplyConfirm   = "ap:go"
	ApplyCancel    = "ap:cancel"
)

// NewTemplatePrompt starts template authoring from a command or a button.
const NewTemplatePrompt = "📝 Send a name for the new template, e.g. <i>Weekdays</i>.\n\n/cancel to stop."
