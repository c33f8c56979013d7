package wordcloud

// portugueseStopwords are common Portuguese function words
var portugueseStopwords = []string{
	"a", "à", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles", "aquilo", "as", "às", "até",
	"com", "como", "da", "das", "de", "dela", "delas", "dele", "deles", "depois", "do", "dos",
	"e", "é", "ela", "elas", "ele", "eles", "em", "entre", "era", "eram", "essa", "essas", "esse",
	"esses", "esta", "está", "estamos", "estão", "estas", "estava", "estavam", "este", "estes",
	"eu", "foi", "fomos", "for", "foram", "há", "isso", "isto", "já", "lhe", "lhes", "mais", "mas",
	"me", "mesmo", "meu", "meus", "minha", "minhas", "muito", "na", "não", "nas", "nem", "no",
	"nos", "nós", "nossa", "nossas", "nosso", "nossos", "num", "numa", "o", "os", "ou", "para",
	"pela", "pelas", "pelo", "pelos", "por", "qual", "quando", "que", "quem", "são", "se", "seja",
	"sem", "ser", "será", "seu", "seus", "só", "sua", "suas", "também", "te", "tem", "têm", "temos",
	"ter", "teu", "teus", "tu", "tua", "tuas", "um", "uma", "umas", "uns", "você", "vocês", "vos",
	"sobre", "após", "ainda", "cada", "onde", "porque", "pois", "assim", "então", "todo", "toda",
	"todos", "todas",
}

// englishStopwords are common English function words
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but",
	"by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "few", "for",
	"from", "further", "had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "in", "into", "is", "it", "its", "itself", "just",
	"me", "more", "most", "my", "myself", "no", "nor", "not", "of", "off", "on", "once", "only",
	"or", "other", "ought", "our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "theirs", "them", "themselves",
	"then", "there", "these", "they", "this", "those", "through", "to", "too", "under", "until",
	"up", "very", "was", "we", "were", "what", "when", "where", "which", "while", "who", "whom",
	"why", "with", "would", "you", "your", "yours", "yourself", "yourselves",
}

// DefaultStopwords returns a fresh set of the Portuguese and English stopwords
func DefaultStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(portugueseStopwords)+len(englishStopwords))
	for _, w := range portugueseStopwords {
		set[w] = struct{}{}
	}
	for _, w := range englishStopwords {
		set[w] = struct{}{}
	}
	return set
}
