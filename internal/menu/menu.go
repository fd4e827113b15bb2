// Package menu holds the static referral menu tree and resolves selection
// keys to screen content. The mapping is a plain lookup table: no dynamic
// state influences which node a key resolves to.
package menu

import "strings"

// Button is one inline keyboard button. Key and URL are mutually exclusive:
// a Key button sends a selection back to the bot, a URL button opens the
// partner link directly.
type Button struct {
	Label string
	Key   string
	URL   string
}

// Node is the content of one menu screen.
type Node struct {
	Key      string
	Text     string
	Rows     [][]Button
	HTML     bool
	Terminal bool // final "get the offer" screen
}

// Selection keys of the non-generated nodes.
const (
	KeyStartMenu   = "start_menu"
	KeyMainMenu    = "back_to_main"
	KeyBackToStart = "back_to_start"
	KeyMFOList     = "mfo_150k"
	KeyPTS         = "pts_5m"
	KeyPledge      = "pledge_50m"
	KeyHelp        = "help"
	KeyGetPTS      = "get_pts_loan"
	KeyGetPledge   = "get_pledge_loan"
)

const (
	mfoPrefix     = "mfo_"
	getLoanPrefix = "get_loan_"
)

// offer is one MFO partner entry: detail text shown on selection and the
// partner tracking link for the terminal screen.
type offer struct {
	name  string
	label string
	text  string
	link  string
}

// Resolve maps a selection key to its node. Unknown keys (stale payloads
// from old keyboards) return ok=false and must be ignored by the caller.
func Resolve(key string) (Node, bool) {
	n, ok := nodes[key]
	return n, ok
}

// IsConversion reports whether the key marks a completed referral click.
func IsConversion(key string) bool {
	return strings.HasPrefix(key, "get_")
}

var nodes = buildNodes()

func buildNodes() map[string]Node {
	all := make(map[string]Node)
	add := func(n Node) {
		all[n.Key] = n
	}

	backToMain := Button{Label: "◀️ Назад", Key: KeyMainMenu}

	startRows := [][]Button{
		{{Label: "🚀 Поехали!", Key: KeyStartMenu}},
	}
	mainRows := [][]Button{
		{{Label: "💸 МФО до 150к", Key: KeyMFOList}},
		{{Label: "🚗 Под ПТС до 5млн", Key: KeyPTS}},
		{{Label: "🏠 Под залог до 50млн", Key: KeyPledge}},
		{{Label: "❓ Помощь", Key: KeyHelp}},
		{{Label: "◀️ Назад", Key: KeyBackToStart}},
	}

	add(Node{
		Key:  KeyBackToStart,
		Text: welcomeText,
		Rows: startRows,
	})
	add(Node{
		Key:  KeyStartMenu,
		Text: "Выбери финпродукт, который тебя интересует:",
		Rows: mainRows,
	})
	add(Node{
		Key:  KeyMainMenu,
		Text: "Выбери финпродукт, который тебя интересует:",
		Rows: mainRows,
	})

	mfoRows := [][]Button{}
	for _, o := range offers {
		mfoRows = append(mfoRows, []Button{{Label: o.label, Key: mfoPrefix + o.name}})
	}
	mfoRows = append(mfoRows, []Button{backToMain})
	add(Node{
		Key: KeyMFOList,
		Text: "💫 Вы выбрали займ от микрофинансовой организации.\n\n" +
			"У нас есть быстрые займы под низкий процент! 🚀\n\n" +
			"Выберите подходящую МФО:",
		Rows: mfoRows,
	})

	backToMFO := Button{Label: "◀️ Назад к списку МФО", Key: KeyMFOList}
	for _, o := range offers {
		add(Node{
			Key:  mfoPrefix + o.name,
			Text: o.text,
			HTML: true,
			Rows: [][]Button{
				{{Label: "📝 Получить займ", Key: getLoanPrefix + o.name}},
				{backToMFO},
			},
		})
		add(Node{
			Key:      getLoanPrefix + o.name,
			Text:     "Переходите по кнопке ниже, заполните короткую анкету и получите решение:",
			Terminal: true,
			Rows: [][]Button{
				{{Label: "✅ ЗАБРАТЬ ДЕНЬГИ НА КАРТУ", URL: o.link}},
				{backToMFO},
			},
		})
	}

	ptsRows := [][]Button{
		{{Label: "📝 Получить кредит", Key: KeyGetPTS}},
		{backToMain},
	}
	add(Node{
		Key: KeyPTS,
		Text: "🚗 Кредит под ПТС до 5 000 000 ₽\n\n" +
			"✨ Низкая процентная ставка\n" +
			"📅 Срок до 5 лет\n" +
			"🔑 Автомобиль остается у вас\n" +
			"💵 Выплаты от 15 000 ₽/мес\n\n" +
			"Для получения кредита нажмите кнопку ниже:",
		Rows: ptsRows,
	})
	add(Node{
		Key: KeyGetPTS,
		Text: "📝 Для получения кредита под ПТС:\n\n" +
			"1. Нажмите на кнопку ниже\n" +
			"2. Заполните анкету\n" +
			"3. Загрузите документы на автомобиль\n" +
			"4. Получите решение\n\n" +
			"⚡️ Среднее время рассмотрения: 1-2 часа",
		Terminal: true,
		Rows:     ptsRows,
	})

	pledgeRows := [][]Button{
		{{Label: "📝 Получить кредит", Key: KeyGetPledge}},
		{backToMain},
	}
	add(Node{
		Key: KeyPledge,
		Text: "🏠 Кредит под залог недвижимости до 50 000 000 ₽\n\n" +
			"✨ Крупная сумма\n" +
			"📅 Срок до 20 лет\n" +
			"💫 Низкая процентная ставка\n" +
			"💵 Выплаты от 50 000 ₽/мес\n\n" +
			"Для получения кредита нажмите кнопку ниже:",
		Rows: pledgeRows,
	})
	add(Node{
		Key: KeyGetPledge,
		Text: "📝 Для получения кредита под залог недвижимости:\n\n" +
			"1. Нажмите на кнопку ниже\n" +
			"2. Заполните анкету\n" +
			"3. Загрузите документы на недвижимость\n" +
			"4. Получите решение\n\n" +
			"⚡️ Среднее время рассмотрения: 1-3 дня",
		Terminal: true,
		Rows:     pledgeRows,
	})

	add(Node{
		Key: KeyHelp,
		Text: "❓ Помощь\n\n" +
			"📝 Как получить финансирование:\n\n" +
			"1️⃣ Выберите подходящий продукт\n" +
			"2️⃣ Заполните анкету\n" +
			"3️⃣ Загрузите необходимые документы\n" +
			"4️⃣ Получите решение\n" +
			"5️⃣ Подпишите договор\n\n" +
			"💬 По всем вопросам обращайтесь в поддержку: @support",
		Rows: mainRows,
	})

	return all
}

const welcomeText = "👋 Привет! На связи ФинАгрегаторБот!\n\n" +
	"Я помогу вам подобрать выгодные финансовые решения в кратчайшие сроки: " +
	"займы от МФО без залога, займы под залог авто или недвижимости.\n\n" +
	"А также иные денежные инструменты на все случаи жизни вы сможете найти здесь!\n\n" +
	"Начинаем?"

// WelcomeNode is the screen shown on /start and on any stray text message.
func WelcomeNode() Node {
	return nodes[KeyBackToStart]
}

var offers = []offer{
	{
		name:  "express",
		label: "⚡️ ЭкспрессДеньги 0%",
		link:  "https://clck.ru/3M6gGy",
		text: "💸 <b>ЭкспрессДеньги</b>\n\n" +
			"🥇 Первый и 🏅 шестой займ — <b>без процентов</b>!\n" +
			"🎁 Постоянные клиенты получают <b>бонусы</b> и привилегии!\n" +
			"💰 Кешбэк за выполнение заданий: выполняйте простые задания и получайте возврат!\n\n" +
			"<b>Условия:</b>\n" +
			"👤 Гражданам РФ от 18 до 70 лет\n" +
			"💵 Сумма: от 1 000 до 100 000 ₽ (шаг 1 000 ₽)\n" +
			"📆 Срок: до 52 недель\n\n" +
			"⚡️ Решение моментально! В случае доп. проверки — до 10-15 минут.\n\n" +
			"<b>Тарифы:</b>\n" +
			"🆕 Стандартный (новый клиент): от 1 000 до 30 000 ₽ — с 1 по 29 день <b>0%</b>, с 30 дня — 0,6%/день\n" +
			"📈 Долгосрочный: от 31 000 до 100 000 ₽ — с 10 по 24 неделю <b>0,6%/день</b>\n",
	},
	{
		name:  "urgent",
		label: "⚡️ Срочноденьги 0%",
		link:  "https://trk.ppdu.ru/click/XTQAqAhA?erid=2SDnjc7jaxR",
		text: "💸 <b>Срочноденьги</b>\n\n" +
			"🎉 <b>Ваш кредит — первый заём бесплатно!</b>\n\n" +
			"<b>Описание:</b>\n" +
			"💵 Сумма займа: от 2 000 до 30 000 ₽\n" +
			"📆 Срок займа: до 30 дней\n" +
			"🥇 Первый заём бесплатно (до 7 дней)\n\n" +
			"<b>Преимущества:</b>\n" +
			"💰 Выгодные условия\n" +
			"🪪 Только паспорт для оформления\n" +
			"⚡️ До 8 минут — и деньги уже на карте!\n\n" +
			"<b>Требования к заёмщику:</b>\n" +
			"🔞 Возраст: 18–65 лет\n" +
			"🇷🇺 Гражданство РФ, паспорт РФ\n" +
			"🏠 Регистрация на территории РФ\n\n" +
			"🌍 Все регионы РФ, кроме: Крым, Дагестан, Карачаево-Черкессия, Севастополь, Чечня, ДНР, ЛНР.\n",
	},
	{
		name:  "amoney",
		label: "⚡️ А Деньги 7 дней 0%",
		link:  "https://trk.ppdu.ru/click/Z2nIYcGH?erid=LjN8KSUm6",
		text: "💳 <b>Кредитный лимит от 'А Деньги'</b>\n\n" +
			"⚡️ Новый вид заёмных средств: быстрота одобрения как у онлайн-займов и удобство кредитки!\n\n" +
			"📝 Подайте заявку, получите лимит и превратите свою дебетовую карту в кредитку!\n" +
			"💸 Снимайте наличные, берите любые суммы в рамках лимита, возвращайте частями и пользуйтесь снова!\n\n" +
			"<b>Условия простые:</b>\n" +
			"🎁 Для новых клиентов первые 7 дней — бесплатно!\n" +
			"💸 Далее — всего 8 руб./день за каждую 1 000 ₽, которую перевели себе на карту.\n" +
			"📅 Тарификация ежедневная: не пользуетесь — не платите!\n" +
			"🟢 Всегда под рукой запас средств на любые случаи.\n\n" +
			"<b>Как получить лимит?</b>\n" +
			"🪪 Паспорт + дебетовая карта + короткая анкета за 5 минут.\n\n" +
			"<b>Условия кредитного лимита:</b>\n" +
			"💵 Сумма: до 30 000 ₽\n" +
			"📆 Срок лимита: до 30 дней с автопродлением\n" +
			"❌ Без поручителей, справок и залога\n\n" +
			"<b>Требования к клиенту:</b>\n" +
			"🔞 Возраст: 18–75 лет включительно\n" +
			"🇷🇺 Гражданство РФ\n",
	},
	{
		name:  "rocket",
		label: "⚡️ РокетМэн 0,6%",
		link:  "https://trk.ppdu.ru/click/Zm2xFzSS?erid=2SDnjcXCda4",
		text: "🚀 <b>РокетМЭН</b>\n\n" +
			"💵 Размер займа: от 3 000 до 30 000 ₽\n" +
			"📆 Срок займа: от 5 до 30 дней\n" +
			"💸 Процентная ставка: 0.8% в день\n",
	},
	{
		name:  "nebus",
		label: "⚡️ Небус от 0,48%",
		link:  "https://trk.ppdu.ru/click/jOAljKvs?erid=2SDnjck7R1e",
		text: "🌐 <b>Небус</b>\n\n" +
			"<b>Требования к заемщику:</b>\n" +
			"🔞 Возраст: от 18 до 88 лет\n" +
			"🪪 Паспорт РФ\n\n" +
			"<b>Условия получения займов:</b>\n" +
			"💵 Сумма: от 7 000 до 100 000 ₽\n" +
			"📆 Срок: от 7 до 365 дней\n" +
			"💸 Ставка: от 0,48% до 0,8% в день\n\n" +
			"⏱️ Срок рассмотрения: 15 минут\n",
	},
	{
		name:  "dobro",
		label: "⚡️ Доброзайм от 0%",
		link:  "https://trk.ppdu.ru/click/zub20YhE?erid=LjN8JvgqW",
		text: "🤝 <b>Доброзайм</b>\n\n" +
			"🏢 Работает на территории РФ с 2011 года. Компания хорошо относится к своим клиентам, выдавая деньги в долг в разных ситуациях.\n\n" +
			"<b>Сумма займа:</b> от 1 000 до 100 000 ₽\n" +
			"<b>Срок займа:</b> от 4 до 364 дней\n" +
			"<b>Ставка:</b> от 0% до 1% в день\n" +
			"(под 0% новый и постоянный клиент может получить только на 7 дней)\n\n" +
			"<b>Требования к заемщику:</b>\n" +
			"🪪 Только паспорт РФ\n" +
			"🔞 Возраст: от 19 до 90 лет\n" +
			"❌ Без справок, поручителей и залога\n",
	},
	{
		name:  "finmoll",
		label: "⚡️ ФИНМОЛЛ от 0,59%",
		link:  "https://trk.ppdu.ru/click/wQwFZLCW?erid=2SDnjd4YnrC",
		text: "🏦 <b>ФИНМОЛЛ</b>\n\n" +
			"🌟 Наша миссия — предоставляем лучшие финансовые возможности для хороших людей. Быстро, удобно и доступно в шаге от Вас.\n\n" +
			"<b>Сумма займа:</b>\n" +
			"🆕 Для нового клиента: от 30 000 до 60 000 ₽\n" +
			"🔁 Для повторного клиента: от 30 000 до 200 000 ₽\n\n" +
			"<b>Срок займа:</b> до 52 недель (до 364 дней)\n" +
			"💳 Платежи: еженедельно\n" +
			"💸 Процентная ставка: от 215% до 250% годовых\n" +
			"💰 Полная стоимость займа: от 199,073% до 250%\n" +
			"❌ Без залога и поручительства\n\n" +
			"<b>Требования к заёмщику:</b>\n" +
			"🇷🇺 Гражданство РФ\n" +
			"🔞 Возраст: 18–70 лет (первичные), 18–75 лет (повторные)\n" +
			"💼 Постоянный источник дохода\n" +
			"🪪 Оформление по паспорту\n",
	},
}
