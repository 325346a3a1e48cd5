package types

// StateSnapshot:
//   version: number
//   view:
//     games: Game[]
//     selected_game: Game | null
//     event_options: string[]
//     period: number
//     events: string[]
//     sequences: Sequence[] // filtered for the period and events
//     selected_sequence?: string // absent when none
//     marks: { value: number, label: string }[]
//     slider: { min: number, max: number, value: number }
//     plays: Play[]
//     selected_play: number | null
//     play?: Play // absent when no play is selected
//     can_prev: boolean
//     can_next: boolean
//     graph: { nodes: Node[], links: Link[] }
//     annotation: Node | null
//     diagram: boolean // graph and annotation are drawn
//     scale: { x: number, y: number }
//     loading: { games: boolean, sequences: boolean, plays: boolean }
//     errors: { games?: string, sequences?: string, plays?: string }
//
// Error:
//   error: string
