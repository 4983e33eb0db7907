// Package normalize turns raw spreadsheet cells into typed task values.
// Every function is total: unparseable input yields the field default.
package normalize

import (
	"sheetimport/domain/task"
	"sheetimport/internal/textnorm"
)

var statusSynonyms = buildTable(map[task.Status][]string{
	task.StatusTodo: {
		"todo", "to do", "open", "new", "not started", "backlog", "pending", "planned",
		"à faire", "a faire", "nouveau", "ouvert", "non commencé", "en attente",
		"pendiente", "por hacer", "abierto", "nuevo",
		"offen", "neu", "zu erledigen", "geplant",
	},
	task.StatusInProgress: {
		"in progress", "in_progress", "doing", "started", "ongoing", "wip", "active", "in review",
		"en cours", "commencé", "démarré",
		"en progreso", "en curso", "en proceso",
		"in bearbeitung", "in arbeit", "laufend",
	},
	task.StatusCompleted: {
		"done", "completed", "complete", "finished", "closed", "resolved",
		"terminé", "fini", "achevé", "fait", "clos",
		"hecho", "completado", "terminado", "cerrado",
		"erledigt", "abgeschlossen", "fertig",
	},
	task.StatusCancelled: {
		"cancelled", "canceled", "abandoned", "dropped", "won't do", "wont do",
		"annulé", "abandonné",
		"cancelado", "anulado",
		"abgebrochen", "storniert",
	},
})

var prioritySynonyms = buildTable(map[task.Priority][]string{
	task.PriorityLow: {
		"low", "minor", "trivial", "p4",
		"basse", "bas", "faible",
		"baja", "bajo",
		"niedrig", "gering",
	},
	task.PriorityMedium: {
		"medium", "normal", "moderate", "p3",
		"moyenne", "moyen",
		"media", "medio",
		"mittel",
	},
	task.PriorityHigh: {
		"high", "major", "important", "p2",
		"haute", "haut", "élevée", "elevee",
		"alta", "alto",
		"hoch", "wichtig",
	},
	task.PriorityUrgent: {
		"urgent", "critical", "blocker", "highest", "asap", "p1", "p0",
		"critique", "bloquant",
		"urgente", "crítica",
		"dringend", "kritisch",
	},
})

func buildTable[T ~string](in map[T][]string) map[string]T {
	out := make(map[string]T)
	for value, list := range in {
		out[key(string(value))] = value
		for _, s := range list {
			out[key(s)] = value
		}
	}
	return out
}

func key(s string) string {
	return textnorm.Key(s, ' ')
}

// Status maps a status cell to the status enum, defaulting to todo
func Status(s string) task.Status {
	if v, ok := statusSynonyms[key(s)]; ok {
		return v
	}
	return task.StatusTodo
}

// Priority maps a priority cell to the priority enum, defaulting to medium
func Priority(s string) task.Priority {
	if v, ok := prioritySynonyms[key(s)]; ok {
		return v
	}
	return task.PriorityMedium
}
