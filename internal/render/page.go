package render

import (
	"bytes"
	"html/template"
	"io"
	"slices"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
)

// PageData holds data for the dashboard template
type PageData struct {
	SessionID   string
	View        engine.View
	Rink        template.HTML
	Card        *Card
	SliderLabel string
	Periods     []int
}

var funcMap = template.FuncMap{
	"checked": func(events []string, e string) bool { return slices.Contains(events, e) },
	"isGame": func(v engine.View, date string) bool {
		return v.SelectedGame != nil && v.SelectedGame.Date == date
	},
}

var tmplDashboard = template.Must(template.New("dashboard").Funcs(funcMap).Parse(dashboardHTML))

// Page renders the full dashboard for one session.
func Page(w io.Writer, sessionID string, v engine.View) error {
	data := PageData{
		SessionID:   sessionID,
		View:        v,
		SliderLabel: engine.MarkLabel(v.Sequences, v.Slider.Value),
		Periods:     []int{engine.FirstPeriod, engine.FirstPeriod + 1, engine.LastPeriod},
	}

	// The rink is always drawn; the overlay only when a play is selected.
	var buf bytes.Buffer
	selected := -1
	if v.SelectedPlay != nil {
		selected = *v.SelectedPlay
	}
	if err := RinkSVG(&buf, v.Graph, v.Scale, selected); err != nil {
		return err
	}
	data.Rink = template.HTML(buf.String())
	if v.Play != nil {
		c := CardFor(*v.Play)
		data.Card = &c
	}

	return tmplDashboard.Execute(w, data)
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sequences</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6fa;color:#2f3640}
#app{display:grid;grid-template-columns:1fr 1fr;gap:16px;padding:16px;max-width:1400px;margin:auto}
.card{background:#fff;border-radius:6px;padding:16px;box-shadow:0 1px 3px rgba(0,0,0,.12)}
.error{background:#fdecea;color:#c0392b;padding:8px 12px;border-radius:4px;margin-bottom:8px}
.events label{margin-right:12px}
.periods button[aria-pressed=true]{background:#2f3640;color:#fff}
.score{display:grid;grid-template-columns:1fr 1fr 1fr;align-items:center}
.score .mid{text-align:center}
.score .right{text-align:right}
.marks{position:relative;height:16px;font-size:10px}
#rink{min-height:200px}
#rink .node{cursor:pointer}
</style>
</head>
<body>
<div id="app" data-session="{{.SessionID}}">
  <div class="card">
    {{with .View.Errors}}{{if .Games}}<div class="error">Could not load games: {{.Games}}</div>{{end}}{{if .Sequences}}<div class="error">Could not load sequences: {{.Sequences}}</div>{{end}}{{if .Plays}}<div class="error">Could not load plays: {{.Plays}}</div>{{end}}{{end}}
    <label>Game
      <select id="game">
        <option value="">{{if .View.Loading.Games}}Loading...{{else}}Select a game{{end}}</option>
        {{range .View.Games}}<option value="{{.Date}}" {{if isGame $.View .Date}}selected{{end}}>{{.Label}}</option>{{end}}
      </select>
    </label>
    <div class="events">
      {{range .View.EventOptions}}<label><input type="checkbox" name="event" value="{{.}}" {{if checked $.View.Events .}}checked{{end}}> {{.}}</label>{{end}}
    </div>
    <div class="periods">
      {{range .Periods}}<button type="button" data-period="{{.}}" aria-pressed="{{if eq . $.View.Period}}true{{else}}false{{end}}">Period {{.}}</button>{{end}}
    </div>
    <div>
      <input id="slider" type="range" min="{{.View.Slider.Min}}" max="{{.View.Slider.Max}}" value="{{.View.Slider.Value}}" list="marks" style="width:100%">
      <datalist id="marks">{{range .View.Marks}}<option value="{{.Value}}" label="{{.Label}}"></option>{{end}}</datalist>
      <span id="slider-label">{{.SliderLabel}}</span>
    </div>
    <div id="rink">{{if .View.Loading.Plays}}<p>Loading plays...</p>{{end}}{{.Rink}}</div>
  </div>
  <div class="card">
    {{with .Card}}
    <div class="score">
      <div><strong>{{.AwayTeam}}</strong><br><small>{{.AwaySkaters}}</small></div>
      <div class="mid"><h2>{{.Score}}</h2><small>{{.PeriodClock}}</small></div>
      <div class="right"><strong>{{.HomeTeam}}</strong><br><small>{{.HomeSkaters}}</small></div>
    </div>
    <hr>
    <h3>{{.Heading}}</h3>
    <p>{{.Description}}</p>
    {{else}}<p>No play selected.</p>{{end}}
    <button type="button" id="prev" {{if not .View.CanPrev}}disabled{{end}}>Previous Play</button>
    <button type="button" id="next" {{if not .View.CanNext}}disabled{{end}}>Next Play</button>
  </div>
</div>
<script>
(function(){
  var id = document.getElementById('app').dataset.session;
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws?session=' + encodeURIComponent(id));
  function send(m){ if (ws.readyState === 1) ws.send(JSON.stringify(m)); }
  function resize(){
    var r = document.getElementById('rink');
    send({type:'Resize', width:r.clientWidth, height:Math.round(r.clientWidth*85/200)});
  }
  function refresh(){
    fetch('/?session=' + encodeURIComponent(id)).then(function(r){ return r.text(); }).then(function(html){
      var doc = new DOMParser().parseFromString(html, 'text/html');
      document.getElementById('app').replaceWith(doc.getElementById('app'));
    });
  }
  ws.onopen = resize;
  ws.onmessage = function(e){
    var m = JSON.parse(e.data);
    if (m.type === 'StateSnapshot') refresh();
    if (m.type === 'Error') console.warn(m.error);
  };
  window.addEventListener('resize', resize);
  document.addEventListener('change', function(e){
    var t = e.target;
    if (t.id === 'game') send({type:'SelectGame', game_date:t.value});
    if (t.name === 'event') {
      var evs = Array.prototype.map.call(document.querySelectorAll('input[name=event]:checked'), function(i){ return i.value; });
      send({type:'SetEvents', events:evs});
    }
    if (t.id === 'slider') send({type:'CommitMark', value:parseInt(t.value, 10)});
  });
  document.addEventListener('input', function(e){
    if (e.target.id === 'slider') send({type:'SlideMark', value:parseInt(e.target.value, 10)});
  });
  document.addEventListener('click', function(e){
    var t = e.target;
    if (t.dataset && t.dataset.period) send({type:'SelectPeriod', period:parseInt(t.dataset.period, 10)});
    if (t.id === 'prev') send({type:'PrevPlay'});
    if (t.id === 'next') send({type:'NextPlay'});
    if (t.classList && t.classList.contains('node')) send({type:'SelectPlay', play_index:parseInt(t.dataset.play, 10)});
  });
})();
</script>
</body>
</html>
`
