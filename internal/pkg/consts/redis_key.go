package consts

const (
	ReactionStatsKey    = "reaction:stats:"
	ReactionDirtyKey    = "reaction:dirty"
	NotifyChannelPrefix = "notify:user:"
)

const (
	ReportLock        = "report:lock:"
	TokenBlacklistKey = "token:blacklist:"
)
