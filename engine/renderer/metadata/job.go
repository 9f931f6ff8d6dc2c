package metadata

/** @brief Runs the body of a job on a worker. Returns the job result. */
type JobStart func(params interface{}) (interface{}, error)

/** @brief Definition for completion of a job. */
type JobOnComplete func(result interface{})

/** @brief Definition for failure of a job. */
type JobOnFailure func(err error)

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A general job that does not have any specific thread requirements.
	 * This means it matters little which job thread this job runs on.
	 */
	JOB_TYPE_GENERAL JobType = 0x02
	/**
	 * @brief A resource loading job. Only touches the disk and the parsers,
	 * never the device.
	 */
	JOB_TYPE_RESOURCE_LOAD JobType = 0x04
)

/**
 * @brief Describes a job to be run. OnStart runs on a worker goroutine,
 * OnComplete and OnFailure run on the goroutine that drives the job system.
 */
type JobTask struct {
	/** @brief Name used in log lines. */
	Name string
	/** @brief The type of job. */
	JobType JobType
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
	/** @brief Invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked with the result when the job succeeds. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked when the job fails. Optional. */
	OnFailure JobOnFailure
}
