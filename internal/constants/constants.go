package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 商品销售状态常量（仅作展示，筛选时忽略大小写）
const (
	ProductStatusSaleOff    = "Sale off"
	ProductStatusOnlineOnly = "Online Only"
)

// 购物车单项数量上限
const CartItemMaxQuantity = 999

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 队列常量
const (
	QueueDefault         = "default"
	QueueCritical        = "critical"
	TaskOrderPlaced      = "order:placed"
	TaskOrderStatusEmail = "order:status_email"
)

// 订单事件类型常量
const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventVersionV1          = 1
)

// 缓存默认配置常量
const (
	RedisPrefixDefault         = "ananas"
	CacheKeyCatalogFilterOpts  = "catalog:filter_options"
	CacheTTLCatalogFilterOptsS = 300
)

// 币种常量
const (
	SiteCurrencyDefault = "VND"
)

// 站点语言常量
const (
	LocaleViVN = "vi-VN"
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleViVN, LocaleEnUS, LocaleZhCN}

// 分页默认值
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 上传目录常量
const (
	UploadSceneProducts = "products"
	UploadURLPrefix     = "/uploads"
)
