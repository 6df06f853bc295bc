package question

// DefaultBankVersion is the version of the built-in bank.
const DefaultBankVersion = "v1.0.0"

func tech(terms ...string) []KeyTerm {
	out := make([]KeyTerm, len(terms))
	for i, t := range terms {
		out[i] = KeyTerm{Term: t, Category: CategoryTechnical}
	}
	return out
}

// terms tags every term in ts with category, an aspect label such as
// "tradeoff". The category is not itself a must-mention term.
func terms(category string, ts ...string) []KeyTerm {
	out := make([]KeyTerm, len(ts))
	for i, t := range ts {
		out[i] = KeyTerm{Term: t, Category: category}
	}
	return out
}

func join(groups ...[]KeyTerm) []KeyTerm {
	var out []KeyTerm
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultBank returns the built-in question bank.
func DefaultBank() *Bank {
	return &Bank{Version: DefaultBankVersion, Questions: defaultQuestions()}
}

func defaultQuestions() []Question {
	return []Question{
		// Technical: backend.
		{
			ID: "tech-rest-vs-rpc", Type: TypeTechnical, Difficulty: DifficultyJunior, Category: "backend",
			Text:           "What is the difference between REST and RPC style APIs, and when would you pick each?",
			RequiredSkills: []string{"http", "api design"},
			JobRoles:       []string{"backend engineer", "fullstack engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("resource", "http verb", "procedure"), terms("tradeoff", "coupling")),
				Bonus:       []string{"grpc", "idempotent", "versioning"},
			},
		},
		{
			ID: "tech-sql-index", Type: TypeTechnical, Difficulty: DifficultyJunior, Category: "databases",
			Text:           "Explain what a database index is and how it speeds up queries.",
			RequiredSkills: []string{"sql"},
			JobRoles:       []string{"backend engineer", "data engineer", "data scientist"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("b-tree", "lookup", "write"), terms("cost", "tradeoff", "storage")),
				Bonus:       []string{"composite index", "query plan", "selectivity"},
			},
		},
		{
			ID: "tech-transactions", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "databases",
			Text:           "Describe ACID transactions and the isolation levels a relational database offers.",
			RequiredSkills: []string{"sql", "postgres"},
			JobRoles:       []string{"backend engineer", "data engineer"},
			KeyPoints: KeyPoints{
				MustMention: tech("atomicity", "isolation", "durability", "read committed", "serializable"),
				Bonus:       []string{"phantom read", "dirty read", "mvcc"},
			},
		},
		{
			ID: "tech-caching", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "backend",
			Text:           "How would you add a cache in front of a slow service, and how do you keep it consistent?",
			RequiredSkills: []string{"redis", "caching"},
			JobRoles:       []string{"backend engineer", "fullstack engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("ttl", "invalidation", "cache miss"), terms("consistency", "risk", "stale")),
				Bonus:       []string{"write-through", "cache stampede", "lru"},
			},
		},
		{
			ID: "tech-distributed-consensus", Type: TypeTechnical, Difficulty: DifficultySenior, Category: "distributed systems",
			Text:           "Explain how a consensus algorithm such as Raft keeps replicated state consistent under failures.",
			RequiredSkills: []string{"distributed systems"},
			JobRoles:       []string{"backend engineer", "site reliability engineer"},
			KeyPoints: KeyPoints{
				MustMention: tech("leader", "log replication", "quorum", "term", "election"),
				Bonus:       []string{"split brain", "heartbeat", "linearizable"},
			},
		},
		{
			ID: "tech-rate-limiter", Type: TypeTechnical, Difficulty: DifficultySenior, Category: "backend",
			Text:           "Design a rate limiter for a public API that runs on many servers.",
			RequiredSkills: []string{"system design", "redis"},
			JobRoles:       []string{"backend engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("token bucket", "sliding window", "shared store"), terms("tradeoff", "latency")),
				Bonus:       []string{"429", "burst", "lua script"},
			},
		},
		{
			ID: "tech-message-queue", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "backend",
			Text:           "When would you put a message queue between two services, and what delivery guarantees do you need to think about?",
			RequiredSkills: []string{"messaging", "kafka"},
			JobRoles:       []string{"backend engineer", "data engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("producer", "consumer", "at-least-once"), terms("tradeoff", "ordering")),
				Bonus:       []string{"idempotent consumer", "dead letter queue", "backpressure"},
			},
		},
		{
			ID: "tech-concurrency", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "backend",
			Text:           "What is a race condition and what tools do you use to prevent one?",
			RequiredSkills: []string{"concurrency", "go"},
			JobRoles:       []string{"backend engineer", "any"},
			KeyPoints: KeyPoints{
				MustMention: tech("shared state", "mutex", "atomic"),
				Bonus:       []string{"race detector", "channel", "deadlock"},
			},
		},

		// Technical: frontend.
		{
			ID: "tech-event-loop", Type: TypeTechnical, Difficulty: DifficultyJunior, Category: "frontend",
			Text:           "Explain the JavaScript event loop and how asynchronous callbacks are scheduled.",
			RequiredSkills: []string{"javascript"},
			JobRoles:       []string{"frontend engineer", "fullstack engineer"},
			KeyPoints: KeyPoints{
				MustMention: tech("call stack", "task queue", "microtask"),
				Bonus:       []string{"promise", "settimeout", "non-blocking"},
			},
		},
		{
			ID: "tech-render-performance", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "frontend",
			Text:           "A React page re-renders slowly when typing in a form. How do you diagnose and fix it?",
			RequiredSkills: []string{"react", "performance"},
			JobRoles:       []string{"frontend engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("profiler", "memo", "state"), terms("process", "measure")),
				Bonus:       []string{"usecallback", "virtualization", "debounce"},
			},
		},
		{
			ID: "tech-web-security", Type: TypeTechnical, Difficulty: DifficultySenior, Category: "frontend",
			Text:           "How do you protect a web application against XSS and CSRF attacks?",
			RequiredSkills: []string{"security"},
			JobRoles:       []string{"frontend engineer", "fullstack engineer", "backend engineer"},
			KeyPoints: KeyPoints{
				MustMention: tech("escaping", "content security policy", "csrf token", "samesite"),
				Bonus:       []string{"httponly", "sanitize", "origin check"},
			},
		},

		// Technical: data.
		{
			ID: "tech-overfitting", Type: TypeTechnical, Difficulty: DifficultyJunior, Category: "data science",
			Text:           "What is overfitting and how do you detect and reduce it?",
			RequiredSkills: []string{"machine learning"},
			JobRoles:       []string{"data scientist", "machine learning engineer"},
			KeyPoints: KeyPoints{
				MustMention: tech("training", "validation", "regularization"),
				Bonus:       []string{"cross-validation", "dropout", "early stopping"},
			},
		},
		{
			ID: "tech-ab-testing", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "data science",
			Text:           "Walk through how you would design and analyze an A/B test for a new checkout flow.",
			RequiredSkills: []string{"statistics", "experimentation"},
			JobRoles:       []string{"data scientist", "product manager"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("hypothesis", "sample size", "significance"), terms("outcome", "metric")),
				Bonus:       []string{"p-value", "power", "guardrail"},
			},
		},
		{
			ID: "tech-data-pipeline", Type: TypeTechnical, Difficulty: DifficultySenior, Category: "data engineering",
			Text:           "Design a pipeline that ingests a billion events per day and makes them queryable within minutes.",
			RequiredSkills: []string{"kafka", "streaming"},
			JobRoles:       []string{"data engineer", "backend engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("partition", "stream processing", "schema"), terms("operations", "backfill", "monitoring")),
				Bonus:       []string{"exactly once", "columnar", "late events"},
			},
		},

		// Technical: ops.
		{
			ID: "tech-incident-metrics", Type: TypeTechnical, Difficulty: DifficultyMid, Category: "devops",
			Text:           "Which signals do you monitor for a production service, and how do you alert on them?",
			RequiredSkills: []string{"monitoring", "prometheus"},
			JobRoles:       []string{"site reliability engineer", "devops engineer", "backend engineer"},
			KeyPoints: KeyPoints{
				MustMention: tech("latency", "error rate", "saturation", "slo"),
				Bonus:       []string{"burn rate", "golden signals", "runbook"},
			},
		},
		{
			ID: "tech-containers", Type: TypeTechnical, Difficulty: DifficultyJunior, Category: "devops",
			Text:           "What problem do containers solve and how do they differ from virtual machines?",
			RequiredSkills: []string{"docker"},
			JobRoles:       []string{"devops engineer", "site reliability engineer", "any"},
			KeyPoints: KeyPoints{
				MustMention: tech("image", "kernel", "isolation"),
				Bonus:       []string{"namespace", "cgroup", "orchestration"},
			},
		},
		{
			ID: "tech-zero-downtime", Type: TypeTechnical, Difficulty: DifficultySenior, Category: "devops",
			Text:           "How do you deploy a breaking database schema change without downtime?",
			RequiredSkills: []string{"databases", "deployment"},
			JobRoles:       []string{"backend engineer", "site reliability engineer", "devops engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("migration", "backward compatible", "feature flag"), terms("process", "rollback")),
				Bonus:       []string{"expand and contract", "dual write", "canary"},
			},
		},
		{
			ID: "tech-big-o", Type: TypeTechnical, Difficulty: DifficultyAll, Category: "fundamentals",
			Text:           "Explain Big-O notation and compare the complexity of hash map and sorted array lookups.",
			RequiredSkills: []string{"algorithms"},
			JobRoles:       []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: tech("constant", "logarithmic", "hash"),
				Bonus:       []string{"amortized", "binary search", "collision"},
			},
		},

		// Behavioral: general.
		{
			ID: "beh-conflict", Type: TypeBehavioral, Difficulty: DifficultyAll, Category: "teamwork",
			Text:     "Tell me about a time you disagreed with a teammate. How did you resolve it?",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "disagreed"), terms("action", "listened", "compromise"), terms("result", "outcome")),
				Bonus:       []string{"learned", "relationship", "data"},
			},
		},
		{
			ID: "beh-failure", Type: TypeBehavioral, Difficulty: DifficultyAll, Category: "growth",
			Text:     "Describe a project that failed or missed its goal. What did you learn?",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "goal"), terms("action", "responsibility"), terms("result", "learned")),
				Bonus:       []string{"retrospective", "changed", "prevent"},
			},
		},
		{
			ID: "beh-deadline", Type: TypeBehavioral, Difficulty: DifficultyJunior, Category: "delivery",
			Text:     "Tell me about a time you had to deliver something under a tight deadline.",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "deadline"), terms("action", "prioritized"), terms("result", "delivered")),
				Bonus:       []string{"scope", "communicated", "trade-off"},
			},
		},
		{
			ID: "beh-learning", Type: TypeBehavioral, Difficulty: DifficultyJunior, Category: "growth",
			Text:     "Describe how you learned a new technology quickly for a project.",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "project"), terms("action", "documentation", "practiced"), terms("result", "shipped")),
				Bonus:       []string{"mentor", "prototype", "feedback"},
			},
		},
		{
			ID: "beh-ownership", Type: TypeBehavioral, Difficulty: DifficultyMid, Category: "ownership",
			Text:     "Tell me about a time you took ownership of a problem outside your assigned work.",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "problem"), terms("action", "initiative"), terms("result", "impact")),
				Bonus:       []string{"stakeholder", "measured", "follow up"},
			},
		},
		{
			ID: "beh-feedback", Type: TypeBehavioral, Difficulty: DifficultyMid, Category: "communication",
			Text:     "Describe a time you received critical feedback. How did you respond?",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "feedback"), terms("action", "improved"), terms("result", "growth")),
				Bonus:       []string{"asked", "specific", "manager"},
			},
		},
		{
			ID: "beh-mentoring", Type: TypeBehavioral, Difficulty: DifficultySenior, Category: "leadership",
			Text:     "Tell me about someone you mentored and how you helped them grow.",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "mentored"), terms("action", "goals", "regular"), terms("result", "promoted", "independent")),
				Bonus:       []string{"pairing", "code review", "career"},
			},
		},
		{
			ID: "beh-influence", Type: TypeBehavioral, Difficulty: DifficultySenior, Category: "leadership",
			Text:     "Describe a time you influenced a technical decision across teams without formal authority.",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "decision"), terms("action", "proposal", "alignment"), terms("result", "adopted")),
				Bonus:       []string{"design doc", "prototype", "data"},
			},
		},
		{
			ID: "beh-prioritization", Type: TypeBehavioral, Difficulty: DifficultyMid, Category: "product",
			Text:     "Tell me about a time you had to say no to a stakeholder request.",
			JobRoles: []string{"product manager", "any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "request"), terms("action", "priorities", "explained"), terms("result", "agreed")),
				Bonus:       []string{"roadmap", "impact", "alternative"},
			},
		},
		{
			ID: "beh-customer", Type: TypeBehavioral, Difficulty: DifficultyJunior, Category: "customer focus",
			Text:     "Describe a time you went out of your way to help a customer or user.",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("situation", "customer"), terms("action", "helped"), terms("result", "satisfied")),
				Bonus:       []string{"empathy", "root cause", "follow up"},
			},
		},

		// Situational.
		{
			ID: "sit-outage", Type: TypeSituational, Difficulty: DifficultyAll, Category: "incident response",
			Text:           "Production is down during your on-call shift and the usual fix does not work. What do you do?",
			RequiredSkills: []string{"incident response"},
			JobRoles:       []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("logs", "rollback"), terms("process", "escalate", "communicate"), terms("outcome", "postmortem")),
				Bonus:       []string{"status page", "blameless", "mitigate"},
			},
		},
		{
			ID: "sit-unclear-requirements", Type: TypeSituational, Difficulty: DifficultyJunior, Category: "delivery",
			Text:     "You are handed a task with vague requirements and the product owner is on vacation. How do you proceed?",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("process", "clarify", "assumptions"), terms("outcome", "document")),
				Bonus:       []string{"prototype", "stakeholder", "small increment"},
			},
		},
		{
			ID: "sit-legacy-code", Type: TypeSituational, Difficulty: DifficultyMid, Category: "backend",
			Text:           "You inherit a legacy service without tests that needs a new feature next week. What is your plan?",
			RequiredSkills: []string{"refactoring", "testing"},
			JobRoles:       []string{"backend engineer", "frontend engineer", "fullstack engineer"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("characterization test", "refactor"), terms("process", "risk", "incremental")),
				Bonus:       []string{"strangler", "feature flag", "code review"},
			},
		},
		{
			ID: "sit-missed-estimate", Type: TypeSituational, Difficulty: DifficultyMid, Category: "delivery",
			Text:     "Halfway through a sprint you realize your feature will take twice as long as estimated. What do you do?",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("process", "communicate", "early"), terms("outcome", "scope", "plan")),
				Bonus:       []string{"trade-off", "transparency", "re-estimate"},
			},
		},
		{
			ID: "sit-security-leak", Type: TypeSituational, Difficulty: DifficultySenior, Category: "security",
			Text:           "You discover API keys committed to a public repository. Walk me through your response.",
			RequiredSkills: []string{"security"},
			JobRoles:       []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(tech("revoke", "rotate", "history"), terms("process", "notify"), terms("outcome", "prevent")),
				Bonus:       []string{"secret scanning", "audit log", "pre-commit"},
			},
		},
		{
			ID: "sit-roadmap-conflict", Type: TypeSituational, Difficulty: DifficultySenior, Category: "product",
			Text:     "Two executives ask for conflicting features on the same deadline. How do you handle it?",
			JobRoles: []string{"product manager", "engineering manager"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("process", "impact", "data"), terms("outcome", "decision", "align")),
				Bonus:       []string{"escalate", "trade-off", "roadmap"},
			},
		},
		{
			ID: "sit-code-review", Type: TypeSituational, Difficulty: DifficultyJunior, Category: "teamwork",
			Text:     "A senior colleague leaves harsh comments on your pull request. How do you respond?",
			JobRoles: []string{"any"},
			KeyPoints: KeyPoints{
				MustMention: join(terms("process", "understand", "ask"), terms("outcome", "improve")),
				Bonus:       []string{"private conversation", "learn", "respect"},
			},
		},
	}
}
