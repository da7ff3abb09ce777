package consts

const (
	DefaultAvatarURL = "default_avatar.png"
)

const (
	EmailCodeLength     = 6
	EmailCodeTTLMinutes = 5
)
