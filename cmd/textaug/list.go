package main

import (
	"fmt"

	"github.com/gomlx/go-textaug/augment"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
)

// Augmenter kinds, by what they need to run.
const (
	kindNoise = "noise"
	kindWords = "words"
	kindModel = "model"
)

type augmenterInfo struct {
	kind, needs, description string
}

var augmenterInfos = map[string]augmenterInfo{
	"CharacterNoise":            {kindNoise, "", "random character insertion, deletion, swap or replacement"},
	"KeyboardNoise":             {kindNoise, "", "typos with neighboring keys of a QWERTY keyboard"},
	"OCRNoise":                  {kindNoise, "", "common OCR character confusions"},
	"OCRAugmentation":           {kindNoise, "", "OCR confusions at a higher rate, variants next to their original"},
	"WordSplit":                 {kindWords, "", "splits words in two"},
	"EasyDataAugmentation":      {kindWords, "thesaurus", "synonym insertion, word deletion and swap, sentence shuffle"},
	"SynonymReplacement":        {kindWords, "thesaurus", "replaces words by synonyms"},
	"SimilarWordReplacement":    {kindWords, "vectors", "replaces words by their nearest neighbors in a word embedding"},
	"BackTranslation":           {kindModel, "translation", "translates to an interim language and back"},
	"AbstractiveSummarization":  {kindModel, "summarization", "replaces texts by their summary"},
	"Paraphrase":                {kindModel, "text generation", "paraphrases each sentence"},
	"ContextualWordReplacement": {kindModel, "fill-mask", "replaces one word per sentence with a masked language model"},
}

func listAugmenters(cmd *cobra.Command, au aurora.Aurora) {
	w := cmd.OutOrStdout()
	for _, name := range augment.Names() {
		info, found := augmenterInfos[name]
		if !found {
			info = augmenterInfo{kind: "other"}
		}
		var kind aurora.Value
		switch info.kind {
		case kindNoise:
			kind = au.Green(fmt.Sprintf("%-5s", info.kind))
		case kindWords:
			kind = au.Cyan(fmt.Sprintf("%-5s", info.kind))
		default:
			kind = au.Yellow(fmt.Sprintf("%-5s", info.kind))
		}
		fmt.Fprintf(w, "%s %s %s", au.Bold(fmt.Sprintf("%-26s", name)), kind, info.description)
		if info.needs != "" {
			fmt.Fprintf(w, " %s", au.Faint("(needs "+info.needs+")"))
		}
		fmt.Fprintln(w)
	}
}
