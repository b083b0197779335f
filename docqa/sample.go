package docqa

import einodoc "github.com/cloudwego/eino/components/document"

// SampleText is the built-in document used when no file is given
const SampleText = `
人工智能（Artificial Intelligence，AI）是计算机科学的一个分支，旨在创建能够执行通常需要人类智能的任务的系统。

机器学习是人工智能的一个子领域，它使计算机能够在没有明确编程的情况下学习。机器学习算法通过分析数据来识别模式，并使用这些模式来做出预测或决策。

深度学习是机器学习的一个子集，它使用多层神经网络来模拟人脑的工作方式。深度学习在图像识别、语音识别和自然语言处理等领域取得了重大突破。

自然语言处理（NLP）是人工智能的一个领域，专注于使计算机能够理解、解释和生成人类语言。NLP 技术广泛应用于聊天机器人、语音助手和机器翻译等应用中。

Eino 是一个用于构建基于大语言模型的应用程序的 Go 框架。它提供了丰富的组件和编排能力，帮助开发者更容易地集成和使用各种 AI 模型。
`

// SampleQuestions are asked against SampleText before the interactive loop
var SampleQuestions = []string{
	"什么是人工智能？",
	"机器学习和深度学习的关系是什么？",
	"Eino 是什么？",
	"NLP 有哪些应用？",
}

func documentSource(path string) einodoc.Source {
	return einodoc.Source{URI: path}
}
