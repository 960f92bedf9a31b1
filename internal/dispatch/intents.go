package dispatch

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/nadzzz/joey/internal/dialogue"
	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/override"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/sensor"
	"github.com/nadzzz/joey/internal/textutil"
)

// ClockFormat renders the time as "03:04 PM".
const ClockFormat = "03:04 PM"

// about_joey sub-questions, tried in order.
var (
	hairRE = regexp.MustCompile(`hair colou?r|colou?r is your hair|baal|pelo|بال|do you not have hair|you don't have hair|do you have hair`)
	ageRE  = regexp.MustCompile(textutil.WholeWord(`age|how old|umar|edad|عمر`))
	langRE = regexp.MustCompile(`what languages|which languages|speak any language|kaun kaun si (?:bhasha|zaban)|qué idiomas|koi bhi zaban`)
	selfRE = regexp.MustCompile(`are you real|are you alive|do you have feelings|are you a robot|are you human`)
)

// unsupported names the capability in the "can't do that yet" reply.
var unsupported = map[intent.Tag]string{
	intent.PlayMusic:   "play music",
	intent.SetReminder: "set reminders",
	intent.SearchWeb:   "search the web",
}

// answer speaks the reply for a classified intent.
func (d *Dispatcher) answer(ctx context.Context, t *override.Turn) {
	res := t.Result
	switch res.Intent {
	case intent.Greet:
		tpl := d.responses.Render(response.Greeting, t.State.ResponseLanguage(), nil)
		text := tpl.Text
		if t.State.UserName != "" {
			text += " " + t.State.UserName
		}
		res.Say(text, tpl.Lang)

	case intent.GreetSomeone:
		d.say(t, response.GreetSomeone, nil)

	case intent.AskForHelp:
		d.say(t, response.Help, nil)

	case intent.EmergencyCall:
		// Accepted by the classifier but below the distress override gate.
		d.say(t, response.EmergencyPrompt, nil)

	case intent.TellAJoke:
		d.say(t, response.Joke, nil)

	case intent.JokeFeedbackNegative:
		d.say(t, response.JokeFeedback, nil)

	case intent.ThankYou:
		d.say(t, response.ThankYou, nil)

	case intent.StopOrExit:
		d.say(t, response.Farewell, nil)
		res.Stop = true

	case intent.IntroduceMyself:
		d.introduce(t)

	case intent.AskName:
		if t.State.UserName != "" {
			d.say(t, response.YourName, response.Vars{"name": t.State.UserName})
		} else {
			d.say(t, response.NameUnknown, nil)
		}

	case intent.AboutJoey:
		d.about(t)

	case intent.AskLocation:
		loc, err := d.sensors.Location(ctx)
		if err != nil {
			d.unavailable(t, "location", err)
			return
		}
		d.say(t, response.Location, response.Vars{"location": loc})

	case intent.TellTime:
		d.say(t, response.Time, response.Vars{"time": d.now().Format(ClockFormat)})

	case intent.AskWeather:
		w, err := d.sensors.Weather(ctx)
		if err != nil {
			d.unavailable(t, "weather", err)
			return
		}
		d.say(t, response.Weather, response.Vars{
			"location":  w.Location,
			"condition": w.Condition,
			"temp_c":    strconv.Itoa(w.TempC),
			"temp_f":    strconv.Itoa(w.TempF()),
		})

	case intent.CheckHeartbeat:
		bpm, err := d.sensors.Heartbeat(ctx)
		if err != nil {
			d.unavailable(t, "heartbeat", err)
			return
		}
		d.say(t, response.Heartbeat, response.Vars{"heartbeat": strconv.Itoa(bpm)})

	case intent.CheckSpeed:
		sp, err := d.sensors.Speed(ctx)
		if err != nil {
			d.unavailable(t, "speed", err)
			return
		}
		vars := response.Vars{"speed": strconv.Itoa(sp.KMH), "limit": strconv.Itoa(sp.Limit)}
		if sp.Speeding() {
			d.say(t, response.Speeding, vars)
		} else {
			d.say(t, response.Speed, vars)
		}

	case intent.CheckTrafficLight:
		sig, err := d.sensors.TrafficSignal(ctx)
		if err != nil {
			d.unavailable(t, "traffic_signal", err)
			return
		}
		if sig == sensor.SignalRed {
			d.say(t, response.RedLight, nil)
		} else {
			d.say(t, response.TrafficLight, response.Vars{"signal": string(sig)})
		}

	case intent.Translate:
		d.say(t, response.TranslatePrompt, nil)

	case intent.SetLanguageMode:
		d.say(t, response.ModeHelp, nil)

	case intent.PlayMusic, intent.SetReminder, intent.SearchWeb:
		d.say(t, response.Unsupported, response.Vars{"feature": unsupported[res.Intent]})

	default:
		d.unknown(t)
	}
}

// introduce stores the user's name. A failed extraction asks again and
// leaves the state alone.
func (d *Dispatcher) introduce(t *override.Turn) {
	name, ok := dialogue.ExtractName(t.Utterance)
	if !ok {
		d.say(t, response.NameUnclear, nil)
		return
	}
	t.State.UserName = name
	t.Result.Entities.Name = name
	t.Logger.Info("user name stored", "name", name)

	d.say(t, response.NameSaved, response.Vars{"name": name})
	if dialogue.AsksNameBack(t.Utterance) {
		d.say(t, response.JoeyName, nil)
	}
}

func (d *Dispatcher) about(t *override.Turn) {
	u := t.Utterance
	switch {
	case hairRE.MatchString(u):
		d.say(t, response.AboutHair, nil)
	case langRE.MatchString(u):
		d.say(t, response.AboutLanguages, response.Vars{"languages": languageList()})
	case ageRE.MatchString(u):
		d.say(t, response.AboutAge, nil)
	case selfRE.MatchString(u):
		d.say(t, response.AboutNature, nil)
	default:
		d.say(t, response.AboutGeneral, nil)
	}
}

// languageList renders "English, Hindi, ... and Dutch".
func languageList() string {
	names := lang.Names()
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func (d *Dispatcher) unavailable(t *override.Turn, reading string, err error) {
	t.Logger.Warn("sensor reading unavailable", "reading", reading, "error", err)
	d.say(t, response.InfoUnavailable, nil)
}
