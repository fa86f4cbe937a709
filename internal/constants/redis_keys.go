package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// CompanyModulePrefix 公司模块
	CompanyModulePrefix = "company"
	// ChatModulePrefix 聊天模块
	ChatModulePrefix = "chat"

	// EntityCache 缓存实体
	EntityCache = "cache"
	// EntitySession 会话实体
	EntitySession = "session"

	// KeyCompanyCache 公司详情缓存 (STRING, JSON)
	// 格式: app:company:cache:{lower(name)}
	KeyCompanyCache = AppPrefix + ":" + CompanyModulePrefix + ":" + EntityCache + ":%s"

	// KeyChatSession 聊天会话历史 (LIST, 每个元素为一条JSON消息)
	// 格式: app:chat:session:{sessionID}
	KeyChatSession = AppPrefix + ":" + ChatModulePrefix + ":" + EntitySession + ":"
)
