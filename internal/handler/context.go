package handler

type ContextKey string

var (
	SubCtxKey  ContextKey = "sub"
	RoleCtxKey ContextKey = "role"
	MyInfoCtx  ContextKey = "myInfo"
)
