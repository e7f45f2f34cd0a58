package help

const ColdstartYAML = `# mooc-renderer Quick Start

stores:
  sqlite: "Pages with revision history in mooc-renderer.db (default)"
  dir: "Page files below a directory: <dir>/<Namespace>/<Root>/<Sub>.{json,yaml,yml,md,txt}"
  http: "Raw page text from a wiki: <base_url>/index.php?title=...&action=raw"

item_format: |
  # MOOC:Kurs  (json or yaml)
  type: unit
  name: Rechnernetze
  children: [Woche 1, Woche 2]
  learning-goals:
    - Protokolle erklären
  further-reading:
    - RFC 791

  # MOOC:Kurs/Woche 1
  type: lesson
  video: woche1.webm
  script: Skript          # optional, default <item>/script
  quiz: ":MOOC:Quizze/1"  # leading ":" means absolute

commands:
  import_pages: |
    mooc-renderer pages import --dir ./course

  list_pages: |
    mooc-renderer pages list --prefix "MOOC:Kurs"

  render_one: |
    mooc-renderer render --item "MOOC:Kurs/Woche 1" --out woche1.html

  render_json: |
    mooc-renderer render --item "MOOC:Kurs" --format json

  render_course: |
    mooc-renderer render-all --root "MOOC:Kurs" --output-dir out

  show_structure: |
    mooc-renderer structure --item "MOOC:Kurs" --format yaml

  from_wiki: |
    mooc-renderer render --item "MOOC:Kurs" --store http --base-url https://wiki.example.org/w

  runs: |
    mooc-renderer db runs
    mooc-renderer db run 3 --failed

config_file: |
  # mooc.yaml
  store: {driver: sqlite, path: mooc-renderer.db, cache_size: 512, cache_ttl: 5m}
  workers: 4
  language: auto          # or de, en
  heading_level: 2
  sections:
    - {key: learning-goals, title: Lernziele}
    - {key: script, title: Skript, collapsed: true}

sections:
  lesson: [learning-goals, video, script, quiz, further-reading]
  unit: [learning-goals, video, children, further-reading]

error_behavior:
  - "Missing, cyclic or malformed pages abort the render of that course"
  - "Items of unknown type render navigation and an error notice only"
  - "render-all writes manifest.json with per page status and exits non-zero if any page failed"
`
