package lesson

// Builtin returns the catalog shipped with typecert.
func Builtin() *Catalog {
	return NewCatalog(builtinTable)
}

var builtinTable = Table{
	"en": {
		"easy": {
			{
				Title: "Home row",
				Topics: []TopicSpec{
					{Title: "Short words", Text: "a sad lad asks dad for a glass of salad as all fall"},
					{Title: "Pairs", Text: "ask flask dash lash glad flag shall half jazz fads"},
				},
			},
			{
				Title: "Everyday sentences",
				Topics: []TopicSpec{
					{Title: "Morning", Text: "The sun is up and the tea is hot. We sit by the window and plan the day."},
					{Title: "Market", Text: "She buys rice, fish and fresh greens at the market before the rain starts."},
				},
			},
		},
		"medium": {
			{
				Title: "Money matters",
				Topics: []TopicSpec{
					{Title: "Budget", Text: "A simple budget splits each month into needs, wants and savings. Track every expense for thirty days and the gaps become obvious."},
					{Title: "Receipts", Text: "Keep receipts for large purchases, note the date and the amount, and compare them with the bank statement at the end of the week."},
				},
			},
			{
				Title: "Science",
				Topics: []TopicSpec{
					{Title: "Water cycle", Text: "Water evaporates from oceans, condenses into clouds and returns as rain, feeding rivers that carry it back to the sea."},
					{Title: "Light", Text: "Light travels faster than sound, which is why we see lightning before we hear the thunder that follows it."},
				},
			},
		},
		"hard": {
			{
				Title: "Punctuation and numbers",
				Topics: []TopicSpec{
					{Title: "Invoices", Text: "Invoice #4721 (dated 03/11) lists 17 items; the subtotal is $1,284.50, tax adds 7.5%, and payment is due within 30 days."},
					{Title: "Quotes", Text: "\"Measure twice, cut once,\" the carpenter said; then, after a pause: \"Unless you're out of wood - in that case, measure three times!\""},
				},
			},
		},
	},
	"bn": {
		"easy": {
			{
				Title: "বর্ণমালা",
				Topics: []TopicSpec{
					{Title: "শব্দ", Text: "আম জাম কলা বই খাতা কলম মা বাবা ভাই বোন"},
					{Title: "ছোট বাক্য", Text: "আমি ভাত খাই। সে বই পড়ে। আমরা মাঠে খেলি।"},
				},
			},
		},
		"medium": {
			{
				Title: "কবিতা",
				Topics: []TopicSpec{
					{Title: "সোনার বাংলা", Text: "আমার সোনার বাংলা, আমি তোমায় ভালোবাসি। চিরদিন তোমার আকাশ, তোমার বাতাস, আমার প্রাণে বাজায় বাঁশি।"},
				},
			},
			{
				Title: "দৈনন্দিন",
				Topics: []TopicSpec{
					{Title: "বাজার", Text: "সকালে বাজারে গিয়ে চাল, ডাল আর সবজি কিনলাম। ফেরার পথে বৃষ্টি শুরু হলো।"},
				},
			},
		},
	},
}
