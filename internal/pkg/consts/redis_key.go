package consts

const (
	EmailCodeKey      = "email:validate:code:"
	UnreadCountKey    = "notification:unread:count:"
	TokenBlacklistKey = "token:blacklist:"
)

const (
	UserDetailLock = "user:detail:lock:"
	UserExportLock = "lock:user:export"
)
