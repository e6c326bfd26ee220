package dialog

import "fmt"

// Catalog holds every utterance the assistant can speak. The texts are
// YAML-overridable (see Loader) so wording can change without a rebuild;
// entries containing %s are fmt templates.
type Catalog struct {
	Welcome            string `yaml:"welcome"`
	RepromptMenu       string `yaml:"reprompt_menu"`
	PromptFinalMenu    string `yaml:"prompt_final_menu"`
	AskEventName       string `yaml:"ask_event_name"`
	AskEventDate       string `yaml:"ask_event_date"`
	AskEventTime       string `yaml:"ask_event_time"`
	CreateConfirmed    string `yaml:"create_confirmed"`
	NoEventsToday      string `yaml:"no_events_today"`
	DailyList          string `yaml:"daily_list"`
	AskFullDescription string `yaml:"ask_full_description"`
	AskEventToDescribe string `yaml:"ask_event_to_describe"`
	DescribeEvent      string `yaml:"describe_event"`
	DescribeNotFound   string `yaml:"describe_not_found"`
	AskQueryCriteria   string `yaml:"ask_query_criteria"`
	AskQueryName       string `yaml:"ask_query_name"`
	AskQueryDate       string `yaml:"ask_query_date"`
	QueryResult        string `yaml:"query_result"`
	QueryNotFound      string `yaml:"query_not_found"`
	QueryDateEmpty     string `yaml:"query_date_empty"`
	QueryDateList      string `yaml:"query_date_list"`
	AskModifyName      string `yaml:"ask_modify_name"`
	AskModifyField     string `yaml:"ask_modify_field"`
	AskNewValue        string `yaml:"ask_new_value"`
	ModifyConfirmed    string `yaml:"modify_confirmed"`
	AskCancelName      string `yaml:"ask_cancel_name"`
	CancelConfirmed    string `yaml:"cancel_confirmed"`
	CancelAlreadyGone  string `yaml:"cancel_already_gone"`
	EventNotFoundRetry string `yaml:"event_not_found_retry"`
	AuthRequired       string `yaml:"auth_required"`
	APIError           string `yaml:"api_error"`
	UnexpectedInput    string `yaml:"unexpected_input"`
	Goodbye            string `yaml:"goodbye"`
}

// DefaultCatalog returns the compiled-in Spanish texts.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Welcome:            "¡Hola! Bienvenido a tu biblioteca inteligente. ¿Deseas programar un evento, escuchar los recordatorios del día, escuchar un recordatorio específico o cancelar o modificar uno existente?",
		RepromptMenu:       "Puedes agendar un evento, escuchar los recordatorios del día, consultar un recordatorio específico, modificar un evento, o cancelar un evento. ¿Qué deseas hacer?",
		PromptFinalMenu:    "¿Quieres hacer algo más? Puedes agendar un evento, escuchar los recordatorios del día, consultar un recordatorio específico, modificar un evento, o cancelar un evento. ¿Qué deseas hacer?",
		AskEventName:       "Claro, ¿cuál será el nombre de tu evento?",
		AskEventDate:       "Perfecto, agendaremos %s. ¿Para qué fecha lo quieres?",
		AskEventTime:       "Muy bien, el %s. ¿A qué hora lo agendo?",
		CreateConfirmed:    "¡Perfecto! Creé el evento %s el %s, a las %s.",
		NoEventsToday:      "Hoy no tienes recordatorios pendientes.",
		DailyList:          "Claro, estos son tus recordatorios de hoy: %s.",
		AskFullDescription: "¿Desea saber la descripción completa de alguno de estos eventos o recordatorios?",
		AskEventToDescribe: "¿Cuál es el nombre del evento del que le gustaría saber más?",
		DescribeEvent:      "Claro. El evento %s es el %s, a las %s con %s minutos. ¿Desea la descripción completa de algún otro evento?",
		DescribeNotFound:   "No encontré un evento llamado %s en tus recordatorios de hoy. ¿Desea la descripción completa de algún otro evento?",
		AskQueryCriteria:   "Claro. ¿Quieres buscarlo por fecha del evento o por nombre del evento?",
		AskQueryName:       "Muy bien, ¿cuál es el nombre del recordatorio que buscas?",
		AskQueryDate:       "Muy bien, ¿de qué fecha quieres escuchar los recordatorios?",
		QueryResult:        "Encontré el evento %s, el %s a las %s.",
		QueryNotFound:      "No encontré ningún recordatorio llamado %s.",
		QueryDateEmpty:     "No tienes recordatorios para el %s.",
		QueryDateList:      "Estos son tus recordatorios del %s: %s.",
		AskModifyName:      "Claro. Para comenzar ¿cuál es el nombre del evento que deseas modificar?",
		AskModifyField:     "Perfecto, del evento %s. ¿Qué te gustaría modificar: El nombre del evento, la fecha, o el horario?",
		AskNewValue:        "Muy bien, dime cómo quieres actualizarlo.",
		ModifyConfirmed:    "Listo, actualicé el evento %s.",
		AskCancelName:      "Claro. Para comenzar ¿cuál es el nombre del evento que deseas cancelar?",
		CancelConfirmed:    "Se ha cancelado el evento %s.",
		CancelAlreadyGone:  "El evento %s ya no estaba en tu calendario.",
		EventNotFoundRetry: "No encontré el evento %s. ¿Desea intentarlo de nuevo o desea parar?",
		AuthRequired:       "Necesito que vincules tu cuenta para acceder a tu calendario. Por favor, revisa la tarjeta en tu aplicación para vincular tu cuenta.",
		APIError:           "Lo siento, hubo un problema al comunicarme con tu calendario. Por favor, inténtalo de nuevo más tarde.",
		UnexpectedInput:    "Lo siento, no entendí. Por favor, dime una de las opciones.",
		Goodbye:            "¡Adiós! Espero que tu calendario esté bien organizado.",
	}
}

func (c *Catalog) askEventDate(name string) string { return fmt.Sprintf(c.AskEventDate, name) }
func (c *Catalog) askEventTime(date string) string { return fmt.Sprintf(c.AskEventTime, date) }

func (c *Catalog) createConfirmed(name, date, hour string) string {
	return fmt.Sprintf(c.CreateConfirmed, name, date, hour)
}

func (c *Catalog) dailyList(names string) string { return fmt.Sprintf(c.DailyList, names) }

func (c *Catalog) describeEvent(name, date, hour, minute string) string {
	return fmt.Sprintf(c.DescribeEvent, name, date, hour, minute)
}

func (c *Catalog) describeNotFound(name string) string {
	return fmt.Sprintf(c.DescribeNotFound, name)
}

func (c *Catalog) queryResult(name, date, hour string) string {
	return fmt.Sprintf(c.QueryResult, name, date, hour)
}

func (c *Catalog) queryNotFound(name string) string { return fmt.Sprintf(c.QueryNotFound, name) }

func (c *Catalog) queryDateEmpty(date string) string { return fmt.Sprintf(c.QueryDateEmpty, date) }

func (c *Catalog) queryDateList(date, names string) string {
	return fmt.Sprintf(c.QueryDateList, date, names)
}

func (c *Catalog) askModifyField(name string) string { return fmt.Sprintf(c.AskModifyField, name) }

func (c *Catalog) modifyConfirmed(name string) string { return fmt.Sprintf(c.ModifyConfirmed, name) }

func (c *Catalog) cancelConfirmed(name string) string { return fmt.Sprintf(c.CancelConfirmed, name) }

func (c *Catalog) cancelAlreadyGone(name string) string {
	return fmt.Sprintf(c.CancelAlreadyGone, name)
}

func (c *Catalog) eventNotFoundRetry(name string) string {
	return fmt.Sprintf(c.EventNotFoundRetry, name)
}
