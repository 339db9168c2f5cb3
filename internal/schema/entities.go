package schema

// The four managed entity types. Field order matches the dashboard forms.

// JobSeekers describes the job_seekers table.
var JobSeekers = &EntitySchema{
	Entity: "job_seekers",
	Title:  "Соискатели",
	Fields: []FieldSpec{
		{Name: "full_name", Label: "ФИО", Kind: KindString, Required: true},
		{Name: "email", Label: "Email", Kind: KindString, Required: true},
		{Name: "telegram_username", Label: "Телеграм", Kind: KindString},
		{Name: "phone", Label: "Телефон", Kind: KindString},
		{Name: "desired_salary", Label: "Желаемая зарплата", Kind: KindNumber},
		{Name: "experience_years", Label: "Опыт (лет)", Kind: KindNumber},
		{Name: "desired_position", Label: "Желаемая должность", Kind: KindString},
		{Name: "work_format", Label: "Формат работы", Kind: KindString},
		{Name: "location", Label: "Местоположение", Kind: KindString},
		{Name: "github_url", Label: "GitHub URL", Kind: KindString},
		{Name: "skills", Label: "Навыки (через запятую)", Kind: KindStringList},
		{Name: "resume_file_url", Label: "URL резюме", Kind: KindString},
	},
	Notices: Notices{
		Created: "Соискатель добавлен",
		Updated: "Соискатель обновлен",
		Deleted: "Соискатель удален",
	},
}

// HrExperts describes the hr_experts table.
var HrExperts = &EntitySchema{
	Entity: "hr_experts",
	Title:  "HR Эксперты",
	Fields: []FieldSpec{
		{Name: "telegram_username", Label: "Телеграм", Kind: KindString, Required: true},
		{Name: "email", Label: "Email", Kind: KindString},
		{Name: "full_name", Label: "ФИО", Kind: KindString},
		{Name: "company_name", Label: "Компания", Kind: KindString},
		{Name: "phone", Label: "Телефон", Kind: KindString},
		{Name: "user_id", Label: "User ID", Kind: KindNumber, Required: true, Default: "0"},
		{Name: "chat_id", Label: "Chat ID", Kind: KindString, Required: true},
		{Name: "user_type", Label: "Тип пользователя", Kind: KindNumber, Default: "0"},
		{Name: "subscribed", Label: "Подписан", Kind: KindBool, Default: "false"},
		{Name: "message", Label: "Сообщение", Kind: KindString, Required: true},
	},
	Notices: Notices{
		Created: "HR эксперт добавлен",
		Updated: "HR эксперт обновлен",
		Deleted: "HR эксперт удален",
	},
}

// TelegramChannels describes the telegram_channels table.
var TelegramChannels = &EntitySchema{
	Entity: "telegram_channels",
	Title:  "Telegram Каналы",
	Fields: []FieldSpec{
		{Name: "channel_title", Label: "Заголовок", Kind: KindString, Required: true},
		{Name: "channel_username", Label: "Username", Kind: KindString, Required: true},
		{Name: "members_count", Label: "Участники", Kind: KindNumber},
		{Name: "posting_price", Label: "Цена размещения", Kind: KindNumber},
		{Name: "admin_contact", Label: "Контакт админа", Kind: KindString},
		{Name: "relevance_score", Label: "Релевантность", Kind: KindNumber},
		{Name: "activity_score", Label: "Активность", Kind: KindNumber},
		{Name: "success_rate", Label: "Успешность", Kind: KindNumber},
		{Name: "is_active", Label: "Активен", Kind: KindBool, Default: "true"},
		{Name: "is_free", Label: "Бесплатный", Kind: KindBool, Default: "true"},
		{Name: "channel_description", Label: "Описание", Kind: KindString},
		{Name: "posting_rules", Label: "Правила размещения", Kind: KindString},
		{Name: "languages", Label: "Языки (через запятую)", Kind: KindStringList},
		{Name: "tags", Label: "Теги (через запятую)", Kind: KindStringList},
		{Name: "work_formats", Label: "Форматы работы (через запятую)", Kind: KindStringList},
	},
	Notices: Notices{
		Created: "Telegram канал добавлен",
		Updated: "Telegram канал обновлен",
		Deleted: "Telegram канал удален",
	},
}

// SearchQueries describes the search_queries table.
var SearchQueries = &EntitySchema{
	Entity: "search_queries",
	Title:  "История запросов",
	Fields: []FieldSpec{
		{Name: "session_id", Label: "Session ID", Kind: KindString, Required: true},
		{Name: "location", Label: "Местоположение", Kind: KindString},
		{Name: "salary", Label: "Зарплата", Kind: KindNumber},
		{Name: "work_format", Label: "Формат работы", Kind: KindString},
		{Name: "hr_expert_id", Label: "HR Expert ID", Kind: KindString},
		{Name: "user_id", Label: "User ID", Kind: KindString},
		{Name: "message", Label: "Сообщение (JSON)", Kind: KindJSON, Required: true},
		{Name: "generated_keywords", Label: "Ключевые слова (через запятую)", Kind: KindStringList},
	},
	Notices: Notices{
		Created: "Запрос добавлен",
		Updated: "Запрос обновлен",
		Deleted: "Запрос удален",
	},
}

// All returns the managed schemas in dashboard order.
func All() []*EntitySchema {
	return []*EntitySchema{JobSeekers, HrExperts, TelegramChannels, SearchQueries}
}

// ByEntity returns the schema registry keyed by entity name.
func ByEntity() map[string]*EntitySchema {
	m := make(map[string]*EntitySchema)
	for _, s := range All() {
		m[s.Entity] = s
	}
	return m
}
