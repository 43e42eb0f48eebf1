package locales

// MessagesEnUS English (US) translations
var MessagesEnUS = map[string]string{
	// Common messages
	"success":        "Operation successful",
	"common.success": "Success",
	"error":          "Operation failed",
	"unauthorized":   "Unauthorized",
	"forbidden":      "Forbidden",
	"not_found":      "Not found",
	"bad_request":    "Bad request",
	"internal_error": "Internal error",

	// Webhook related
	"webhook.invalid_signature": "Signature verification failed",
	"webhook.accepted":          "Accepted",

	// Bot messages
	"bot.welcome":           "Hi! I translate group messages into the configured languages automatically. Type /menu to open the language menu.",
	"bot.menu_title":        "Choose the translation languages to toggle",
	"bot.busy":              "Too many translation requests right now, please try again later.",
	"bot.language_added":    "Enabled {{.Lang}} translation",
	"bot.language_removed":  "Disabled {{.Lang}} translation",
	"bot.languages_reset":   "Translation languages reset to default",
	"bot.engine_set":        "Translation engine switched to {{.Engine}}",
	"bot.auto_on":           "Auto translation enabled",
	"bot.auto_off":          "Auto translation disabled",
	"bot.not_privileged":    "Only the group admin can change settings",
	"bot.claim_success":     "You are now the temporary admin of this group",
	"bot.claim_taken":       "This group already has an admin",
	"bot.bind_success":      "Group bound successfully",
	"bot.bind_failed":       "Binding failed, check your subscription status and group quota",
	"bot.status_free":       "Currently on the free plan",
	"bot.grant_success":     "Granted a {{.Months}}-month subscription",
	"bot.transfer_proposed": "Transfer proposed. The new account must send /transfer-confirm {{.Code}} within 10 minutes",
	"bot.transfer_done":     "Subscription transferred to the new account",
	"bot.transfer_rejected": "Transfer failed, the target account already has a subscription",
	"bot.transfer_canceled": "Transfer proposal canceled",
	"bot.expire_soon":       "Your subscription expires in {{.Days}} days, remember to renew.",
	"bot.expired":           "Your subscription has expired and was switched to the free plan.",
}
