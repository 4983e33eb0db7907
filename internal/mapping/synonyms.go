package mapping

import "sheetimport/domain/task"

// rawSynonyms lists the header spellings recognised per field. Entries are
// normalized with NormalizeHeader at init, so accents and punctuation are
// free-form here.
var rawSynonyms = map[task.FieldKey][]string{
	task.FieldTitle: {
		"title", "task", "task name", "task title", "name", "summary", "subject",
		"titre", "tâche", "nom de la tâche", "intitulé", "nom",
		"título", "tarea", "nombre de la tarea",
		"titel", "aufgabe", "bezeichnung",
	},
	task.FieldDescription: {
		"description", "desc", "details", "notes", "note", "comments", "comment",
		"commentaire", "commentaires", "remarques",
		"descripción", "detalles", "notas",
		"beschreibung", "notizen", "kommentar",
	},
	task.FieldStatus: {
		"status", "state", "stage",
		"statut", "état",
		"estado",
		"zustand",
	},
	task.FieldPriority: {
		"priority", "prio", "importance", "urgency",
		"priorité", "urgence",
		"prioridad", "urgencia",
		"priorität", "dringlichkeit",
	},
	task.FieldProgress: {
		"progress", "percent", "percentage", "percent complete", "% complete", "% done", "completion", "pct",
		"avancement", "progression", "pourcentage",
		"progreso", "avance", "porcentaje",
		"fortschritt",
	},
	task.FieldStartDate: {
		"start date", "start", "begin", "begin date", "starts",
		"date de début", "début",
		"fecha de inicio", "inicio",
		"startdatum", "beginn",
	},
	task.FieldDueDate: {
		"due date", "due", "deadline", "end date", "due on", "date",
		"échéance", "date d'échéance", "date limite", "date de fin",
		"fecha límite", "vencimiento", "fecha de entrega",
		"fällig", "fälligkeit", "frist", "enddatum",
	},
	task.FieldEstimatedHours: {
		"estimated hours", "estimate", "estimated", "estimation", "effort", "hours",
		"heures estimées", "estimation heures", "heures",
		"horas estimadas", "horas",
		"geschätzte stunden", "schätzung", "stunden",
	},
	task.FieldActualHours: {
		"actual hours", "actual", "time spent", "spent", "hours spent", "logged hours",
		"heures réelles", "temps passé",
		"horas reales", "tiempo dedicado",
		"tatsächliche stunden", "aufwand",
	},
	task.FieldAssignedTo: {
		"assigned to", "assignee", "assigned", "owner", "responsible", "person", "member", "who",
		"assigné à", "assigné", "responsable", "attribué à",
		"asignado", "asignado a",
		"zugewiesen", "verantwortlich", "bearbeiter",
	},
	task.FieldTags: {
		"tags", "tag", "labels", "label", "categories", "category",
		"étiquettes", "étiquette", "catégorie",
		"etiquetas", "categoría",
		"schlagwörter", "kategorie",
	},
	task.FieldColor: {
		"color", "colour", "hex",
		"couleur",
		"colore",
		"farbe",
	},
}

// synonyms holds the normalized dictionary
var synonyms = func() map[task.FieldKey][]string {
	out := make(map[task.FieldKey][]string, len(rawSynonyms))
	for field, list := range rawSynonyms {
		seen := make(map[string]bool, len(list))
		for _, s := range list {
			n := NormalizeHeader(s)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out[field] = append(out[field], n)
		}
	}
	return out
}()

// Synonyms returns the normalized synonyms of a field
func Synonyms(field task.FieldKey) []string {
	out := make([]string, len(synonyms[field]))
	copy(out, synonyms[field])
	return out
}
