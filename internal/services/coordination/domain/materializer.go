package domain

// BuildTaskPayloads turns normalized task definitions into task creation
// payloads for one transaction. Output order matches definition order. No
// deduplication against tasks already on the transaction happens here;
// re-applying a template is an explicit, recorded action.
func BuildTaskPayloads(defs []TaskDefinition, txn Transaction) []TaskPayload {
	payloads := make([]TaskPayload, 0, len(defs))
	for _, def := range defs {
		payloads = append(payloads, TaskPayload{
			TransactionID: txn.ID,
			Title:         def.Title,
			Description:   def.Description,
			Priority:      def.Priority,
			DueDate:       ResolveDueDate(def.DueDateRule, txn),
			Completed:     false,
			AgentVisible:  def.AgentVisible,
		})
	}
	return payloads
}
