package i18n

var messages = map[string]map[string]string{
	"ru": ru,
	"en": en,
}

var ru = map[string]string{
	"welcome":           "👋 Добро пожаловать в Trading Bot!",
	"choose_language":   "🌐 Выберите язык / Choose language:",
	"language_changed":  "✅ Язык изменен на русский",
	"error":             "❌ Произошла ошибка. Попробуйте позже или обратитесь в поддержку.",
	"too_many_attempts": "⏳ Слишком много попыток. Попробуйте еще раз через минуту.",
	"duplicate_phone":   "⚠️ Этот номер телефона уже используется другим пользователем.\n\nЕсли это ваш номер, обратитесь в поддержку: @{support}",
	"phone_invalid":     "❌ {reason}\n\nПопробуйте поделиться номером еще раз.",
	"phone_format":      "Неверный формат номера телефона",
	"phone_length":      "Неверная длина номера телефона",
	"phone_spam":        "Номер телефона выглядит недействительным",
	"phone_foreign":     "Пожалуйста, отправьте свой собственный номер телефона.",
	"unknown_command":   "Неизвестная команда",
	"invalid_data":      "Ошибка: неверные данные",
	"access_denied":     "Доступ запрещен",

	// подписка
	"subscription_prompt": `*Прежде чем начать, подпишитесь на мой канал с ключевым торговым контентом:*

• Торговые сигналы на основе новостей
• Бесплатные стратегии и гайды
• Реальные результаты и кейсы

*Этот шаг необходим для доступа к боту.*

*Как подписаться:*
1. Нажмите кнопку "📢 Подписаться на канал"
2. В открывшемся канале нажмите "Подписаться"
3. Вернитесь сюда и нажмите "✅ Я подписался!"`,
	"btn_subscribe":             "📢 Подписаться на канал",
	"btn_subscribed":            "✅ Я подписался!",
	"btn_check_again":           "🔄 Проверить еще раз",
	"btn_subscription_help":     "❓ Помощь с подпиской",
	"btn_try_again":             "🔄 Попробовать снова",
	"btn_contact_support":       "💬 Связаться с поддержкой",
	"subscription_checking":     "🔄 Проверяем подписку...",
	"subscription_confirmed":    "✅ *Отлично! Подписка подтверждена!*\n\nТеперь поделитесь номером телефона для получения персональных уведомлений.",
	"subscription_not_found":    "❌ Подписка не найдена. Убедитесь, что вы подписались на канал, и попробуйте снова через несколько секунд.",
	"subscription_check_failed": "⚠️ Не удалось проверить подписку. Попробуйте позже.",
	"subscription_help": `❓ *Помощь с подпиской*

Если у вас возникли проблемы с подпиской:

1️⃣ *Убедитесь, что вы нажали "Подписаться"* в канале
2️⃣ *Подождите 3-5 секунд* после подписки
3️⃣ *Попробуйте нажать "Проверить еще раз"*

🔧 *Если проблема не решилась:*
• Выйдите из канала и подпишитесь заново
• Перезапустите бота командой /start
• Обратитесь в поддержку: @{support}

💡 *Важно:* бот может проверить подписку только если у него есть права администратора в канале.`,

	// телефон
	"share_phone":     "📱 Для персонализации уведомлений поделитесь своим номером телефона:",
	"btn_share_phone": "📱 Поделиться номером",
	"contact_request": `📱 *Поделитесь номером телефона*

🎯 Это необходимо для:
• 🔔 Персональных уведомлений о торговых сигналах
• 🎁 Получения эксклюзивных бонусов и акций
• 🆘 Быстрой связи с поддержкой

🔐 *Конфиденциальность гарантирована:*
• Ваш номер используется только для уведомлений
• Мы не передаем данные третьим лицам

👇 Нажмите кнопку ниже, чтобы продолжить`,
	"phone_success": "✅ Отлично! Номер телефона сохранен.\n\nТеперь вы будете получать персональные уведомления о торговых возможностях.",

	// главное меню
	"greeting_named": "Привет, {name}! 👋",
	"greeting":       "Добро пожаловать! 👋",
	"main_menu": `{greeting}

*Добро пожаловать в Trading Bot*

📈 Торговля на экономических новостях: сигналы, копирование сделок и обучение.

*Что вас ждет:*
• 250+ сигналов в месяц
• 500+ активных учеников
• Личный подход к торговле

_Выберите любой пункт меню для начала:_`,
	"btn_copy_trades":     "📈 Копирование сделок",
	"btn_private_signals": "🔐 Приватные сигналы",
	"btn_free_guide":      "📚 Бесплатный гайд",
	"btn_support":         "🛠 Поддержка 24/7",
	"btn_strategy":        "🧠 О моей стратегии",
	"btn_vip_bonus":       "🎁 VIP бонус",
	"btn_faq":             "📄 Частые вопросы",
	"btn_pocket_option":   "🔗 Pocket Option",
	"btn_settings":        "⚙️ Настройки",
	"btn_back_to_menu":    "← Назад в меню",
	"btn_back":            "← Назад",
	"btn_back_to_faq":     "← Назад к FAQ",

	"copy_trades": `*Копирование сделок* — это подключение к моему аккаунту, где каждая моя сделка автоматически повторяется у тебя. Никакого анализа, просто точное повторение.

📌 *Что нужно сделать:*

1. Зарегистрировать аккаунт на брокере
2. Пополнить баланс от 50$

Все сделки я совершаю на свои деньги в реальном времени.`,
	"btn_register_bonus": "📝 Регистрация и бонус",

	"private_signals": `*Приватные сигналы* — это доступ к моим торговым входам в реальном времени. Каждый сигнал содержит актив, направление и точное время входа.

📌 *Что нужно сделать:*

1. Зарегистрировать аккаунт на брокере
2. Пополнить баланс от 50$

Сигналы основаны на экономических новостях и авторской стратегии.`,
	"btn_register_access": "📝 Регистрация и доступ",

	"free_guide": `📚 *Бесплатный гайд: Как торговать на экономических новостях*

В момент публикации важных показателей рынок реагирует резко, создавая сильные импульсы. На них и строится подход.

1️⃣ *Где смотреть новости?*
Экономический календарь: Investing.com, Forexfactory.com.
Ищи события с высокой важностью: Non-Farm Payrolls, CPI, решения по ставкам, безработица, ВВП.

2️⃣ *Когда входить в рынок?*
В первые 1–5 секунд после выхода новости, если факт сильно отличается от прогноза.
• Показатель выше прогноза → цена чаще растёт
• Ниже прогноза → цена падает

3️⃣ *Таймфрейм*
Бинарные опционы на 1–2 минуты.

⚠️ Это базовый уровень. Полный алгоритм доступен в приватных сигналах.`,

	"about_strategy": `🧠 *О моей стратегии*

Стратегия основана на торговле по экономическим новостям: никаких индикаторов, только факт и моментальная реакция.

• Отслеживаю ключевые события (CPI, NFP, ставки)
• Сравниваю фактическое значение с прогнозом
• При сильном расхождении открываю сделку в первые 1–5 секунд

📌 Я не угадываю направление, я реагирую на факты.`,

	"vip_bonus": `🎁 *VIP Бонус*

Получай +60% к первому депозиту на Pocket Option. Используй промокод при пополнении: *{promo}*

📌 Пример: внес $500 → на счёт зачислится $800.

Жми на кнопку ниже для регистрации и получения бонуса!`,
	"btn_get_bonus": "🎁 Получить бонус",

	"faq":     "📄 *Частые вопросы*\n\nВыберите вопрос:",
	"faq_q_1": "Нужно ли уметь торговать?",
	"faq_a_1": "Нет, ты просто копируешь мои сделки или следуешь сигналам.",
	"faq_q_2": "Где я торгую?",
	"faq_a_2": "На платформе Pocket Option. Ссылка есть в меню.",
	"faq_q_3": "Сколько нужно денег для старта?",
	"faq_a_3": "Оптимально: $500–$1000 для стабильной торговли. $10-$50 возможно, но риск потери баланса высокий.",
	"faq_q_4": "Есть ли бонус за регистрацию?",
	"faq_a_4": "Да, при регистрации по моей ссылке ты получаешь бонус к депозиту.",
	"faq_q_5": "Как копировать сделки?",
	"faq_a_5": "Регистрируешься, вносишь депозит и получаешь доступ к сигналам для копирования.",
	"faq_q_6": "Это реальная торговля или демо?",
	"faq_a_6": "Я торгую на реальные деньги. Все сделки публикуются в реальном времени.",
	"faq_q_7": "Pocket Option - это надёжно?",
	"faq_a_7": "Да. Платформа работает много лет, я регулярно вывожу средства.",
	"faq_q_8": "Могу ли я вывести деньги?",
	"faq_a_8": "Да, вывод доступен на карты, крипту и кошельки.",
	"faq_q_9": "Сколько времени нужно в день?",
	"faq_a_9": "Достаточно 10–20 минут. Все сигналы приходят в Telegram.",

	"pocket_option": `🔗 *Регистрация в Pocket Option*

Нажмите кнопку ниже для регистрации и получите:
• +60% бонус на первый депозит (код: {promo})
• Доступ к копированию сделок
• Доступ к приватным сигналам

После регистрации и депозита бот сам откроет вам VIP доступ.`,
	"btn_po_register": "🔗 Регистрация в Pocket Option",

	"settings":            "⚙️ *Настройки*\n\nВыберите что вы хотите настроить:",
	"btn_change_language": "🌐 Изменить язык",
	"change_language":     "🌐 Выберите язык:",

	// postback
	"registration_confirmed": "🎉 Поздравляем! Ваша регистрация подтверждена. Теперь вы можете начать торговать!",
	"vip_unlocked": `🎉 *VIP ДОСТУП ОТКРЫТ!*

Ваш депозит в размере ${amount} подтвержден!

Теперь у вас есть доступ к:
🔔 Приватным торговым сигналам
📈 Эксклюзивной аналитике рынка
💼 Персональным торговым консультациям

Добро пожаловать в VIP клуб! 🌟`,
	"vip_invite": "🔗 Вот ваша приватная ссылка на VIP канал:\n{link}\n\n*Ссылка истекает через 1 час.*",
}

var en = map[string]string{
	"welcome":           "👋 Welcome to Trading Bot!",
	"choose_language":   "🌐 Choose language / Выберите язык:",
	"language_changed":  "✅ Language changed to English",
	"error":             "❌ An error occurred. Please try again later or contact support.",
	"too_many_attempts": "⏳ Too many attempts. Please try again in a minute.",
	"duplicate_phone":   "⚠️ This phone number is already used by another user.\n\nIf this is your number, please contact support: @{support}",
	"phone_invalid":     "❌ {reason}\n\nPlease try sharing your number again.",
	"phone_format":      "Invalid phone number format",
	"phone_length":      "Invalid phone number length",
	"phone_spam":        "The phone number looks invalid",
	"phone_foreign":     "Please share your own phone number.",
	"unknown_command":   "Unknown command",
	"invalid_data":      "Error: Invalid data",
	"access_denied":     "Access denied",

	"subscription_prompt": `*Before we start, subscribe to my channel with key trading content:*

• News-based trading signals
• Free strategies and guides
• Real results and case studies

*This step is required to access the bot.*

*How to subscribe:*
1. Click "📢 Subscribe to the channel"
2. Click "Subscribe" in the channel
3. Return here and click "✅ I've subscribed!"`,
	"btn_subscribe":             "📢 Subscribe to the channel",
	"btn_subscribed":            "✅ I've subscribed!",
	"btn_check_again":           "🔄 Check again",
	"btn_subscription_help":     "❓ Help with subscription",
	"btn_try_again":             "🔄 Try again",
	"btn_contact_support":       "💬 Contact support",
	"subscription_checking":     "🔄 Checking subscription...",
	"subscription_confirmed":    "✅ *Great! Subscription confirmed!*\n\nNow share your phone number to receive personalized notifications.",
	"subscription_not_found":    "❌ Subscription not found. Make sure you subscribed to the channel and try again in a few seconds.",
	"subscription_check_failed": "⚠️ Could not verify the subscription. Please try again later.",
	"subscription_help": `❓ *Help with subscription*

If you're having trouble subscribing:

1️⃣ *Make sure you clicked "Subscribe"* in the channel
2️⃣ *Wait 3-5 seconds* after subscribing
3️⃣ *Try clicking "Check again"*

🔧 *If the problem persists:*
• Leave the channel and subscribe again
• Restart the bot with /start
• Contact support: @{support}

💡 *Important:* the bot can only verify a subscription when it is an admin of the channel.`,

	"share_phone":     "📱 Share your phone number for personalized notifications:",
	"btn_share_phone": "📱 Share phone number",
	"contact_request": `📱 *Share your phone number*

🎯 This is necessary for:
• 🔔 Personal trading signal notifications
• 🎁 Exclusive bonuses and promotions
• 🆘 Quick support communication

🔐 *Privacy guaranteed:*
• Your number is used only for notifications
• We don't share data with third parties

👇 Press the button below to continue`,
	"phone_success": "✅ Great! Phone number saved.\n\nYou will now receive personalized trading notifications.",

	"greeting_named": "Hello, {name}! 👋",
	"greeting":       "Welcome! 👋",
	"main_menu": `{greeting}

*Welcome to Trading Bot*

📈 Economic news trading: signals, copy trading and education.

*What you get:*
• 250+ signals every month
• 500+ active students
• Personal approach to trading

_Choose any option from the menu to start:_`,
	"btn_copy_trades":     "📈 Copy Trading",
	"btn_private_signals": "🔐 Private Signals",
	"btn_free_guide":      "📚 Free Guide",
	"btn_support":         "🛠 24/7 Support",
	"btn_strategy":        "🧠 About My Strategy",
	"btn_vip_bonus":       "🎁 VIP Bonus",
	"btn_faq":             "📄 FAQ",
	"btn_pocket_option":   "🔗 Pocket Option",
	"btn_settings":        "⚙️ Settings",
	"btn_back_to_menu":    "← Back to menu",
	"btn_back":            "← Back",
	"btn_back_to_faq":     "← Back to FAQ",

	"copy_trades": `*Copy Trading* means connecting to my account, where every trade I make is automatically mirrored on yours. No analysis needed.

📌 *What you need to do:*

1. Create an account with the broker
2. Fund your balance from $50

All trades are made with my own real money in real time.`,
	"btn_register_bonus": "📝 Register & Get Bonus",

	"private_signals": `*Private signals* give you real-time access to the exact trade entries I use on my own accounts. Each signal includes the asset, direction and entry time.

📌 *What you need to do:*

1. Create an account with the broker
2. Fund your balance from $50

The signals are based on economic news and my personal strategy.`,
	"btn_register_access": "📝 Register & Get Access",

	"free_guide": `📚 *Free Guide: How to Trade on Economic News*

When major indicators are released the market reacts with strong, fast movements. That is what the method is built on.

1️⃣ *Where to track news?*
Economic calendar: Investing.com, Forexfactory.com.
Look for high-impact events: Non-Farm Payrolls, CPI, interest rates, unemployment, GDP.

2️⃣ *When to enter a trade?*
Within the first 1–5 seconds after the release, if the actual result is far from the forecast.
• Actual > Forecast → price tends to go up
• Actual < Forecast → price tends to drop

3️⃣ *Timeframe*
Binary options with 1–2 minute expiry.

⚠️ This is just the basics. The full algorithm is available in the private signals.`,

	"about_strategy": `🧠 *About My Strategy*

The strategy is based on trading economic news: no indicators, just raw data and instant reaction.

• I monitor key events (CPI, NFP, interest rates)
• I compare the actual numbers with the forecast
• On a strong difference I enter within the first 1–5 seconds

📌 I don't guess the direction, I react to facts.`,

	"vip_bonus": `🎁 *VIP Bonus*

Get +60% on your first deposit at Pocket Option. Use this promo code when depositing: *{promo}*

📌 Example: deposit $500 → your account will show $800.

Click the button below to register and get your bonus!`,
	"btn_get_bonus": "🎁 Get Bonus",

	"faq":     "📄 *Frequently Asked Questions*\n\nChoose a question:",
	"faq_q_1": "Do I need trading experience?",
	"faq_a_1": "No, just copy my trades or follow the signals.",
	"faq_q_2": "Where do you trade?",
	"faq_a_2": "On Pocket Option. The link is in the menu.",
	"faq_q_3": "How much do I need to start?",
	"faq_a_3": "Optimal: $500–$1000 for stable trading. $10–$50 is possible, but with a high risk of losing the balance.",
	"faq_q_4": "Is there a registration bonus?",
	"faq_a_4": "Yes, if you register through my link, you get a deposit bonus.",
	"faq_q_5": "How do I copy your trades?",
	"faq_a_5": "Register, deposit, and you'll get access to my copy signals.",
	"faq_q_6": "Is this real or demo trading?",
	"faq_a_6": "I trade with real money. All trades are shared live.",
	"faq_q_7": "Is Pocket Option reliable?",
	"faq_a_7": "Yes. It's been operating for years, and I withdraw funds regularly.",
	"faq_q_8": "Can I withdraw my money?",
	"faq_a_8": "Yes, withdrawals are available to cards, crypto and wallets.",
	"faq_q_9": "How much time do I need per day?",
	"faq_a_9": "10–20 minutes is enough. All signals come via Telegram.",

	"pocket_option": `🔗 *Pocket Option Registration*

Click the button below to register and get:
• +60% bonus on first deposit (code: {promo})
• Access to copy trading
• Private signals access

After registration and deposit the bot unlocks your VIP access automatically.`,
	"btn_po_register": "🔗 Register on Pocket Option",

	"settings":            "⚙️ *Settings*\n\nChoose what you want to configure:",
	"btn_change_language": "🌐 Change Language",
	"change_language":     "🌐 Choose your language:",

	"registration_confirmed": "🎉 Congratulations! Your registration has been confirmed. You can now start trading!",
	"vip_unlocked": `🎉 *VIP ACCESS UNLOCKED!*

Your deposit of ${amount} has been confirmed!

You now have access to:
🔔 Private trading signals
📈 Exclusive market analysis
💼 Personal trading consultation

Welcome to the VIP club! 🌟`,
	"vip_invite": "🔗 Here's your private link to the VIP channel:\n{link}\n\n*This link will expire in 1 hour.*",
}
