package bot

import (
	"fmt"
	"unicode"

	"luna-bot/internal/analysis"
	"luna-bot/internal/subscription"
)

const (
	cbStartFlow    = "start_flow"
	cbGenderPrefix = "gender_"
	cbAnalyzePhoto = "analyze_photo"
	cbCreateOutfit = "create_outfit"
	cbSubscribe    = "subscribe"
	cbTierPrefix   = "sub_"
	cbGrantDemo    = "grant_self"
	cbSupport      = "support"
	cbStylePrefix  = "style_"
)

const (
	textWelcome = "Привет! Я AI-стилист Luna 🌙\n\n" +
		"Я могу определить ваш цветотип по фото и помочь с подбором образов.\n\n" +
		"Для начала выберите, пожалуйста, ваш пол (это поможет адаптировать рекомендации):"
	textAskGender = "Выберите, пожалуйста, ваш пол (это поможет адаптировать рекомендации):"
	textMainMenu  = "Выберите функцию ниже 👇"
	textHelp      = "Luna — AI-стилист, который помогает с цветами и образами.\n" +
		"Используйте /start, чтобы начать, и кнопки меню для выбора функции."
	textUnknownCommand = "Неизвестная команда. Используйте /start для начала работы."
	textUseMenu        = "Не распознано. Используйте главное меню."

	textPhotoGuidelines = "Как сделать хорошее фото для анализа цветотипа:\n" +
		"• дневное/нейтральное освещение (без цветных ламп);\n" +
		"• лицо и верхняя часть туловища без фильтров и сильного макияжа;\n" +
		"• однотонный фон предпочтителен.\n\n" +
		"После фото я отправлю результат анализа: цветотип и палитру."
	textSendPhoto       = "Пришлите, пожалуйста, ваше фото (в цвете, без фильтров)."
	textSendPhotoFirst  = "Пожалуйста, пришлите фото. Я жду именно изображение."
	textPressAnalyze    = "Если хотите проанализировать фото, нажмите «Анализ фото» в меню."
	textSendSupportText = "Пожалуйста, опишите вопрос текстом."
	textAnalysisFailed  = "К сожалению, не удалось выполнить анализ. Попробуйте ещё раз позже."
	textStoreFailed     = "Извините, произошла ошибка при сохранении данных. Пожалуйста, попробуйте позже."

	textSubscriptionRequired = "Функция доступна по подписке. Оформите подписку или выдайте её себе (DEMO)."
	textSubscriptions        = "Доступные подписки (оплата пока не подключена):"
	textPaymentUnavailable   = "Оплата временно недоступна. Вы можете выдать подписку себе вручную (кнопка «Выдать подписку себе (DEMO)»)."
	textDemoGranted          = "Подписка (DEMO) выдана. Доступ активен до %s."

	textChooseStyle     = "Выберите стиль для образа:"
	textAnalyzeFirst    = "Сначала проведите анализ фото (раздел «Анализ фото»)."
	textGenerating      = "Генерирую аутфиты..."
	textOutfitsHeader   = "Ваши образы:"
	textResultHeader    = "Результат анализа:"
	textResultType      = "Цветотип (определён): %s"
	textResultPalette   = "Рекомендованная палитра: %s"
	textNoPalette       = "(явная палитра не указана)"
	textResultFollowUp  = "Чтобы получить подборку образов, нажмите «Подобрать образ» (функция по подписке)."
	textSupportPrompt   = "Опишите проблему или вопрос. Ваше сообщение будет отправлено разработчику."
	textSupportSent     = "Спасибо! Ваше сообщение отправлено разработчику. Номер обращения: %s"
	textSupportForward  = "Сообщение от пользователя %d (Техподдержка, обращение %s):\n\n%s"
	textSupportDeferred = "Не удалось отправить сообщение. Попробуйте ещё раз позже."
)

const expiryLayout = "2006-01-02 15:04:05 UTC"

func startKeyboard() Keyboard {
	return Keyboard{{{Label: "Старт", Data: cbStartFlow}}}
}

func genderKeyboard() Keyboard {
	return Keyboard{
		{{Label: "Женщина", Data: cbGenderPrefix + "female"}, {Label: "Мужчина", Data: cbGenderPrefix + "male"}},
		{{Label: "Другое / Не указывать", Data: cbGenderPrefix + "other"}},
	}
}

func mainMenuKeyboard() Keyboard {
	return Keyboard{
		{{Label: "Анализ фото", Data: cbAnalyzePhoto}, {Label: "Подобрать образ", Data: cbCreateOutfit}},
		{{Label: "Подписка", Data: cbSubscribe}, {Label: "Техподдержка", Data: cbSupport}},
	}
}

func subscriptionKeyboard() Keyboard {
	kb := make(Keyboard, 0, len(subscription.Tiers)+1)
	for _, tier := range subscription.Tiers {
		kb = append(kb, []Button{{Label: fmt.Sprintf("%s — %s", tier.Label, tier.Price), Data: cbTierPrefix + tier.ID}})
	}
	return append(kb, []Button{{Label: "Выдать подписку себе (DEMO)", Data: cbGrantDemo}})
}

func styleKeyboard(lex *analysis.Lexicon) Keyboard {
	kb := Keyboard{}
	for i := 0; i < len(analysis.Styles); i += 2 {
		row := []Button{}
		for _, st := range analysis.Styles[i:min(i+2, len(analysis.Styles))] {
			row = append(row, Button{Label: styleLabel(lex, st), Data: cbStylePrefix + string(st)})
		}
		kb = append(kb, row)
	}
	return kb
}

func styleLabel(lex *analysis.Lexicon, st analysis.Style) string {
	name := []rune(lex.StyleName(st))
	if len(name) == 0 {
		return string(st)
	}
	return string(append([]rune{unicode.ToUpper(name[0])}, name[1:]...))
}
