package i18n

var catalog = map[string]map[string]string{
	LocaleVI: {
		"error.bad_request":              "Yêu cầu không hợp lệ",
		"error.unauthorized":             "Vui lòng đăng nhập",
		"error.forbidden":                "Bạn không có quyền thực hiện thao tác này",
		"error.not_found":                "Không tìm thấy dữ liệu",
		"error.internal":                 "Lỗi hệ thống, vui lòng thử lại sau",
		"error.too_many_requests":        "Bạn thao tác quá nhanh, vui lòng thử lại sau",
		"error.rate_limited":             "Bạn thao tác quá nhanh, vui lòng thử lại sau %d giây",
		"error.validation_failed":        "Dữ liệu không hợp lệ",
		"error.storage_failure":          "Không thể lưu dữ liệu, vui lòng thử lại",
		"error.concurrency_conflict":     "Dữ liệu đã bị thay đổi, vui lòng tải lại",
		"error.product_not_found":        "Không tìm thấy sản phẩm",
		"error.product_id_invalid":       "Mã sản phẩm không hợp lệ",
		"error.category_not_found":       "Không tìm thấy danh mục",
		"error.category_id_invalid":      "Mã danh mục không hợp lệ",
		"error.category_in_use":          "Danh mục vẫn còn sản phẩm",
		"error.category_exists":          "Danh mục đã tồn tại",
		"error.price_range_invalid":      "Khoảng giá không hợp lệ",
		"error.cart_item_not_found":      "Không tìm thấy sản phẩm trong giỏ hàng",
		"error.cart_empty":               "Giỏ hàng của bạn đang trống",
		"error.insufficient_stock":       "Sản phẩm không đủ số lượng tồn kho",
		"error.order_not_found":          "Không tìm thấy đơn hàng",
		"error.order_id_invalid":         "Mã đơn hàng không hợp lệ",
		"error.order_status_invalid":     "Trạng thái đơn hàng không hợp lệ",
		"error.upload_invalid":           "Tệp tải lên không hợp lệ",
		"error.invalid_credentials":      "Email hoặc mật khẩu không đúng",
		"error.invalid_password":         "Mật khẩu cũ không đúng",
		"error.email_exists":             "Email đã được đăng ký",
		"error.email_invalid":            "Email không hợp lệ",
		"error.user_disabled":            "Tài khoản đã bị khóa",
		"error.token_invalid":            "Phiên đăng nhập đã hết hạn",
		"error.user_id_invalid":          "Mã người dùng không hợp lệ",
		"error.admin_id_invalid":         "Mã quản trị viên không hợp lệ",
		"error.context_type_invalid":     "Dữ liệu phiên không hợp lệ",
		"error.password_min_length":      "Mật khẩu phải có ít nhất %d ký tự",
		"error.password_require_upper":   "Mật khẩu phải chứa chữ hoa",
		"error.password_require_lower":   "Mật khẩu phải chứa chữ thường",
		"error.password_require_number":  "Mật khẩu phải chứa chữ số",
		"error.captcha_required":         "Vui lòng nhập mã xác nhận",
		"error.captcha_invalid":          "Mã xác nhận không đúng",
		"error.captcha_disabled":         "Mã xác nhận chưa được bật",
		"message.order_placed":           "Đặt hàng thành công",
		"message.cart_updated":           "Đã cập nhật giỏ hàng",
		"message.sample_seeded":          "Đã seed %d sản phẩm mẫu!",
		"order.status.pending":           "Chờ xử lý",
		"order.status.processing":        "Đang xử lý",
		"order.status.shipped":           "Đang giao",
		"order.status.delivered":         "Đã giao",
		"order.status.cancelled":         "Đã hủy",
		"email.order_placed.subject":     "Xác nhận đơn hàng %s",
		"email.order_placed.items":       "Sản phẩm:",
		"email.order_placed.body":        "Cảm ơn bạn đã mua hàng tại Ananas.\n\nMã đơn hàng: %s\nTổng tiền: %s %s\nĐịa chỉ giao hàng: %s",
		"email.order_status.subject":     "Đơn hàng của bạn: %s",
		"email.order_status.body":        "Đơn hàng %s đã chuyển sang trạng thái: %s\nTổng tiền: %s %s",
		"email.order_status.body_cancel": "Đơn hàng %s đã bị hủy.\nTổng tiền: %s %s",
	},
	LocaleEN: {
		"error.bad_request":              "Bad request",
		"error.unauthorized":             "Please sign in",
		"error.forbidden":                "You are not allowed to perform this action",
		"error.not_found":                "Not found",
		"error.internal":                 "Internal error, please try again later",
		"error.too_many_requests":        "Too many requests, please try again later",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.validation_failed":        "Validation failed",
		"error.storage_failure":          "Could not save data, please try again",
		"error.concurrency_conflict":     "The record was changed by someone else, please reload",
		"error.product_not_found":        "Product not found",
		"error.product_id_invalid":       "Invalid product id",
		"error.category_not_found":       "Category not found",
		"error.category_id_invalid":      "Invalid category id",
		"error.category_in_use":          "Category still has products",
		"error.category_exists":          "Category already exists",
		"error.price_range_invalid":      "Invalid price range",
		"error.cart_item_not_found":      "Cart item not found",
		"error.cart_empty":               "Your cart is empty",
		"error.insufficient_stock":       "Not enough stock",
		"error.order_not_found":          "Order not found",
		"error.order_id_invalid":         "Invalid order id",
		"error.order_status_invalid":     "Invalid order status",
		"error.upload_invalid":           "Invalid upload",
		"error.invalid_credentials":      "Incorrect email or password",
		"error.invalid_password":         "Old password is incorrect",
		"error.email_exists":             "Email already registered",
		"error.email_invalid":            "Invalid email",
		"error.user_disabled":            "Account disabled",
		"error.token_invalid":            "Session expired",
		"error.user_id_invalid":          "Invalid user id",
		"error.admin_id_invalid":         "Invalid admin id",
		"error.context_type_invalid":     "Invalid session data",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.captcha_required":         "Captcha required",
		"error.captcha_invalid":          "Captcha incorrect",
		"error.captcha_disabled":         "Captcha is not enabled",
		"message.order_placed":           "Order placed",
		"message.cart_updated":           "Cart updated",
		"message.sample_seeded":          "Seeded %d sample products",
		"order.status.pending":           "Pending",
		"order.status.processing":        "Processing",
		"order.status.shipped":           "Shipped",
		"order.status.delivered":         "Delivered",
		"order.status.cancelled":         "Cancelled",
		"email.order_placed.subject":     "Order %s confirmed",
		"email.order_placed.items":       "Items:",
		"email.order_placed.body":        "Thank you for shopping at Ananas.\n\nOrder number: %s\nTotal: %s %s\nShipping address: %s",
		"email.order_status.subject":     "Your order: %s",
		"email.order_status.body":        "Order %s is now: %s\nTotal: %s %s",
		"email.order_status.body_cancel": "Order %s has been cancelled.\nTotal: %s %s",
	},
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "请先登录",
		"error.forbidden":                "无权执行该操作",
		"error.not_found":                "资源不存在",
		"error.internal":                 "系统错误，请稍后重试",
		"error.too_many_requests":        "操作过于频繁，请稍后重试",
		"error.rate_limited":             "操作过于频繁，请 %d 秒后重试",
		"error.validation_failed":        "参数校验失败",
		"error.storage_failure":          "数据保存失败，请重试",
		"error.concurrency_conflict":     "数据已被修改，请刷新后重试",
		"error.product_not_found":        "商品不存在",
		"error.product_id_invalid":       "商品 ID 无效",
		"error.category_not_found":       "分类不存在",
		"error.category_id_invalid":      "分类 ID 无效",
		"error.category_in_use":          "分类下仍有商品",
		"error.category_exists":          "分类已存在",
		"error.price_range_invalid":      "价格区间无效",
		"error.cart_item_not_found":      "购物车项不存在",
		"error.cart_empty":               "购物车为空",
		"error.insufficient_stock":       "库存不足",
		"error.order_not_found":          "订单不存在",
		"error.order_id_invalid":         "订单 ID 无效",
		"error.order_status_invalid":     "订单状态无效",
		"error.upload_invalid":           "上传文件无效",
		"error.invalid_credentials":      "邮箱或密码错误",
		"error.invalid_password":         "原密码错误",
		"error.email_exists":             "邮箱已注册",
		"error.email_invalid":            "邮箱格式错误",
		"error.user_disabled":            "账号已被禁用",
		"error.token_invalid":            "登录已失效",
		"error.user_id_invalid":          "用户 ID 无效",
		"error.admin_id_invalid":         "管理员 ID 无效",
		"error.context_type_invalid":     "会话数据无效",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.captcha_required":         "请输入验证码",
		"error.captcha_invalid":          "验证码错误",
		"error.captcha_disabled":         "验证码未开启",
		"message.order_placed":           "下单成功",
		"message.cart_updated":           "购物车已更新",
		"message.sample_seeded":          "已写入 %d 个示例商品",
		"order.status.pending":           "待处理",
		"order.status.processing":        "处理中",
		"order.status.shipped":           "已发货",
		"order.status.delivered":         "已送达",
		"order.status.cancelled":         "已取消",
		"email.order_placed.subject":     "订单 %s 已确认",
		"email.order_placed.items":       "商品明细：",
		"email.order_placed.body":        "感谢您在 Ananas 购物。\n\n订单号：%s\n订单金额：%s %s\n收货地址：%s",
		"email.order_status.subject":     "您的订单：%s",
		"email.order_status.body":        "订单 %s 状态已更新为：%s\n订单金额：%s %s",
		"email.order_status.body_cancel": "订单 %s 已取消。\n订单金额：%s %s",
	},
}
