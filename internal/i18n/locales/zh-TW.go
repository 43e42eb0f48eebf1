package locales

// MessagesZhTW 正體中文翻譯
var MessagesZhTW = map[string]string{
	// 共通訊息
	"success":        "操作成功",
	"common.success": "成功",
	"error":          "操作失敗",
	"unauthorized":   "未授權",
	"forbidden":      "拒絕存取",
	"not_found":      "找不到資源",
	"bad_request":    "不正確的請求",
	"internal_error": "內部錯誤",

	// Webhook 相關
	"webhook.invalid_signature": "簽章驗證失敗",
	"webhook.accepted":          "已接收",

	// 機器人訊息
	"bot.welcome":           "大家好！我是翻譯小幫手，會自動把群組訊息翻譯成設定的語言。輸入 /menu 開啟語言選單。",
	"bot.menu_title":        "請選擇要開啟或關閉的翻譯語言",
	"bot.busy":              "目前翻譯請求過多，請稍後再試。",
	"bot.language_added":    "已開啟 {{.Lang}} 翻譯",
	"bot.language_removed":  "已關閉 {{.Lang}} 翻譯",
	"bot.languages_reset":   "已重設翻譯語言為預設值",
	"bot.engine_set":        "翻譯引擎已切換為 {{.Engine}}",
	"bot.auto_on":           "已開啟自動翻譯",
	"bot.auto_off":          "已關閉自動翻譯",
	"bot.not_privileged":    "只有群組管理員可以更改設定",
	"bot.claim_success":     "你已成為本群組的臨時管理員",
	"bot.claim_taken":       "本群組已有管理員",
	"bot.bind_success":      "群組綁定成功",
	"bot.bind_failed":       "綁定失敗，請確認訂閱狀態與群組額度",
	"bot.status_free":       "目前為免費方案",
	"bot.grant_success":     "已開通 {{.Months}} 個月訂閱",
	"bot.transfer_proposed": "已建立轉移申請，請新帳號在 10 分鐘內輸入 /transfer-confirm {{.Code}}",
	"bot.transfer_done":     "訂閱已轉移至新帳號",
	"bot.transfer_rejected": "轉移失敗，目標帳號已有訂閱",
	"bot.transfer_canceled": "已取消轉移申請",
	"bot.expire_soon":       "您的訂閱將於 {{.Days}} 天後到期，請記得續約。",
	"bot.expired":           "您的訂閱已到期，已切換為免費方案。",
}
