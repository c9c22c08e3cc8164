package config

type WorkerKeyStruct struct {
	PersistCheckpointsQueue string
	PersistResultsQueue     string
}

var WorkerKey = &WorkerKeyStruct{
	PersistCheckpointsQueue: "persist_checkpoints_queue",
	PersistResultsQueue:     "persist_results_queue",
}
