package server

// DashboardHTML is the embedded single-page dashboard for logmon.
// It connects via WebSocket and renders each published view.
const DashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>logmon</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, monospace;
    background: #0d1117; color: #c9d1d9; padding: 20px;
  }
  h1 { color: #58a6ff; margin-bottom: 4px; font-size: 1.5em; }
  h2 { color: #58a6ff; font-size: 1em; padding: 12px 16px; border-bottom: 1px solid #30363d; }
  .subtitle { color: #8b949e; margin-bottom: 20px; font-size: 0.9em; }
  .status-value.connected { color: #3fb950; }
  .status-value.disconnected { color: #f85149; }
  .layout { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
  .panel { background: #161b22; border: 1px solid #30363d; border-radius: 6px; margin-bottom: 16px; }
  .rows { padding: 8px 16px; }
  .row { display: grid; grid-template-columns: 1fr 1fr; padding: 4px 0; font-size: 0.9em; }
  .row .label { color: #8b949e; }
  .row .value { color: #3fb950; font-weight: 600; }
  .row.total { border-top: 1px solid #30363d; margin-top: 4px; font-weight: 700; }
  .alert { padding: 8px 16px; border-bottom: 1px solid #21262d; font-size: 0.85em; }
  .alert.active { color: #f85149; }
  .alert.recovered { color: #3fb950; }
  .empty { color: #484f58; padding: 16px; }
</style>
</head>
<body>
<h1>logmon</h1>
<div class="subtitle">
  <span id="file"></span> &middot;
  <span id="conn" class="status-value disconnected">disconnected</span>
</div>
<div class="layout">
  <div>
    <div class="panel"><h2>Info</h2><div class="rows" id="info"></div></div>
    <div class="panel"><h2>Most Visited</h2><div class="rows" id="sections"></div></div>
    <div class="panel"><h2>Summary</h2><div class="rows" id="summary"></div></div>
  </div>
  <div>
    <div class="panel"><h2>Alerts</h2><div id="alerts"><div class="empty">No alerts</div></div></div>
    <div class="panel"><h2>Status codes</h2><div class="rows" id="statuses"></div></div>
  </div>
</div>
<script>
let lastAlertKey = '';

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');
  const conn = document.getElementById('conn');
  ws.onopen = () => { conn.textContent = 'live'; conn.className = 'status-value connected'; };
  ws.onclose = () => {
    conn.textContent = 'disconnected'; conn.className = 'status-value disconnected';
    setTimeout(connect, 2000);
  };
  ws.onmessage = (msg) => render(JSON.parse(msg.data));
}

function rows(el, pairs) {
  el.innerHTML = pairs.map(p =>
    '<div class="row' + (p[2] ? ' ' + p[2] : '') + '"><span class="label">' + escHtml(String(p[0])) +
    '</span><span class="value">' + escHtml(String(p[1])) + '</span></div>').join('');
}

function render(v) {
  document.getElementById('file').textContent = v.file;
  rows(document.getElementById('info'), [
    ['Running time', v.runtime],
    ['Refresh rate', v.refresh_interval],
    ['Alert threshold', v.alert_threshold + '/s'],
    ['Alert window', v.alert_window],
    ['Window hits', v.long_hits + ' / ' + v.capacity],
  ].concat(v.process ? [
    ['Memory (RSS)', (v.process.rss_bytes / 1048576).toFixed(1) + 'MB'],
    ['CPU', v.process.cpu_percent.toFixed(1) + '%'],
  ] : []));

  const sections = (v.sections || []).map(s => [s.section, s.hits]);
  sections.push(['Total', v.short_hits, 'total']);
  rows(document.getElementById('sections'), sections);

  rows(document.getElementById('statuses'), (v.statuses || []).map(s => [s.class, s.hits]));

  rows(document.getElementById('summary'), [
    ['Total hits', v.total_requests],
    ['Total traffic', v.total_kb.toFixed(2) + 'KB'],
    ['Average hits (/s)', v.average_hits.toFixed(2)],
  ]);

  if (v.alert) {
    const key = v.alert.id + ':' + v.alert.active;
    if (key !== lastAlertKey) {
      lastAlertKey = key;
      const alerts = document.getElementById('alerts');
      const empty = alerts.querySelector('.empty');
      if (empty) empty.remove();
      const row = document.createElement('div');
      row.className = 'alert ' + (v.alert.active ? 'active' : 'recovered');
      row.textContent = v.alert.message;
      alerts.appendChild(row);
    }
  }
}

function escHtml(s) {
  const d = document.createElement('div');
  d.textContent = s;
  return d.innerHTML;
}

fetch('/api/alerts').then(r => r.json()).then(body => {
  const alerts = document.getElementById('alerts');
  (body.episodes || []).forEach(ep => {
    const empty = alerts.querySelector('.empty');
    if (empty) empty.remove();
    const row = document.createElement('div');
    row.className = 'alert ' + (ep.recovered_at ? 'recovered' : 'active');
    row.textContent = ep.id.slice(0, 8) + '  hits=' + ep.hits + '  triggered ' + ep.triggered_at +
      (ep.recovered_at ? '  recovered ' + ep.recovered_at : '');
    alerts.appendChild(row);
  });
}).catch(() => {});

connect();
</script>
</body>
</html>`
