package types

// Client -> Server (websocket frames and POST /sessions/{id}/actions bodies)
// Reload: {} // refetch the game list
//
// SelectGame:
//   game_date: string // "" clears the selection
//
// SelectPeriod:
//   period: 1 | 2 | 3
//
// SetEvents:
//   events: string[] // every label must be present in a sequence for it to match
//
// SlideMark (preview only, nothing is fetched):
//   value: number
//
// CommitMark:
//   value: number // selects the sequence whose start_time equals value
//
// SelectSequence:
//   sequence_id: string
//
// SelectPlay:
//   play_index: number
//
// PrevPlay: {}
// NextPlay: {}
//
// Resize:
//   width: number
//   height: number
