package bot

// Text commands accepted by the webhook. Matching is exact after trimming
// and lower-casing; anything else gets the help reply.
const (
	CommandHelp   = "help"
	CommandMenu   = "menu"
	CommandStock  = "stock"
	CommandToday  = "today"
	CommandWeek   = "week"
	CommandMonth  = "month"
	CommandOrders = "orders"
)

const helpReply = `Here is what I can do:

menu - list your products
stock - remaining stock per product
today - today's sales summary
week - this week's sales summary
month - this month's sales summary
orders - today's orders
help - show this message`

const registerReply = `You are not registered yet. Please register your shop first to start managing it here.`

const lowStockThreshold = 5
